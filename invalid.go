package agnoio

/*
MIT License

Copyright (c) 2015-2017 University Corporation for Atmospheric Research

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in all
copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
SOFTWARE.
*/

var _ IDoIO = InvalidIO("")

/*InvalidIO is returned alongside an error by NewIDoIO when no known dial
scheme matches. Every method is a no-op that reports the same failure, so
callers that forget to check the accompanying error still fail loudly
instead of panicking on a nil IDoIO.*/
type InvalidIO string

func (i InvalidIO) String() string { return "invalid IO: " + string(i) }

func (i InvalidIO) Open() error { return newErr(false, false, stringErr(string(i))) }

func (i InvalidIO) Read(b []byte) (int, error) { return 0, newErr(false, false, stringErr(string(i))) }

func (i InvalidIO) Write(b []byte) (int, error) { return 0, newErr(false, false, stringErr(string(i))) }

func (i InvalidIO) Close() error { return newErr(false, false, stringErr(string(i))) }

type stringErr string

func (e stringErr) Error() string { return string(e) }
