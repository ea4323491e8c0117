// Package trash finds the recycle directory that should receive a replaced
// source file and moves the file there without overwriting anything already
// in the bin.
//
// Locator resolution order matters: the nearest ancestor directory holding
// the sentinel wins, then each configured volume root's sentinel directory,
// then its backup sentinel directory. A source outside every volume simply
// has no trash location. Mover reserves destination names under a lock so
// concurrent workers never claim the same name.
package trash
