// Package progress decodes the line-oriented progress output of the external
// tools into one normalized signal.
//
// Three grammars are recognized: the ripper's robot-mode records (PRGC, PRGT,
// PRGV, MSG), the encoder's "Encoding:" status line, and the ISO builder's
// "NN.NN% done, ..." line. Each grammar decodes into a named record before it
// touches the parser state, and malformed numbers are treated as "no update".
package progress
