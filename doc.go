// Package microc compiles Micro programs to pseudo-assembly.
//
// Micro is a teaching language with integer variables, assignment, read
// and write statements, and expressions built from + and -. A program is
// a list of statements between begin and end:
//
//	-- sum of two numbers
//	begin
//	  read(a, b);
//	  c := a + b;
//	  write(c);
//	end
//
// microc is a single-pass compiler: the scanner, the LL(1) recursive
// descent parser and the code generator run together, and each
// instruction is emitted as soon as the construct it belongs to has been
// recognised. The listing for the program above is:
//
//	Declare a, Integer
//	Read a, Integer
//	Declare b, Integer
//	Read b, Integer
//	Declare Temp&1, Integer
//	ADD a, b, Temp&1
//	Declare c, Integer
//	Store Temp&1, c
//	Write c, Integer
//	Halt
//
// # Quick Start
//
//	res, err := microc.CompileFile("sum.mic", &microc.Config{Diagnostics: os.Stderr})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Print(res.Listing())
//
// # Error Handling
//
// Errors are returned as specific types for detailed handling:
//   - [IOError]: the source file could not be read
//   - [LexError]: an invalid character or malformed token stopped the scan
//   - [SyntaxError]: the parse finished but reported syntax errors
//
// A syntax error does not stop the parse. Subsequent errors are reported
// once the parser has matched a token again, and no instructions are
// emitted after the first error.
//
// # Thread Safety
//
// Compilations share no state and may run concurrently.
package microc
