// Package wikichars pulls character lists out of mediawiki xml dumps.
//
// The dumps are available from the wikimedia group here:
//    http://dumps.wikimedia.org/
//
// I've mostly pointed it at the jawiki dumps, where works keep their
// cast in a 登場人物 section (or a whole "〜の登場人物" article) written
// as a definition list.  Each retained article comes out as a Record
// with its cleaned titles and a map of character name to description,
// with links and templates flattened to plain text.
//
// See the programs in the tools subdirectory for how the records get
// written out and loaded into various stores.
package wikichars
