// Package core implements the low-level PDF object layer: the COS object
// types (null, boolean, integer, real, string, name, array, dictionary,
// stream, indirect reference), a tokenizer and parser for reading them from
// raw bytes, the classic cross-reference table, and a serializer for writing
// objects back out.
//
// Everything above this package (reader, extract, edit, writer) works in
// terms of these types. The package has no opinion about document structure;
// it only knows PDF syntax.
package core
