package broker

// pendingCommand is one link in the FIFO command queue. The queue is a
// hand-rolled singly-linked list with head/tail pointers: it is only ever
// pushed at the tail and popped at the head, so the prev pointer and
// allocation overhead of container/list's doubly-linked nodes buy nothing
// here.
type pendingCommand struct {
	conn connHandle
	cmd  []byte
	next *pendingCommand
}

// cmdQueue is the broker's global pending-command FIFO.
type cmdQueue struct {
	head, tail *pendingCommand
	n          int
}

func (q *cmdQueue) push(conn connHandle, cmd []byte) {
	node := &pendingCommand{conn: conn, cmd: cmd}
	if q.tail == nil {
		q.head, q.tail = node, node
	} else {
		q.tail.next = node
		q.tail = node
	}
	q.n++
}

func (q *cmdQueue) pop() (connHandle, []byte, bool) {
	if q.head == nil {
		return noConn, nil, false
	}
	node := q.head
	q.head = node.next
	if q.head == nil {
		q.tail = nil
	}
	q.n--
	return node.conn, node.cmd, true
}

func (q *cmdQueue) len() int { return q.n }
