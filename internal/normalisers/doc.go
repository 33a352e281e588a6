// Package normalisers provides implementations of the Normaliser interface
// for blog post formats. Each normaliser turns a raw document of a given
// MIME type into a Post.
//
// Normalisers are registered with the Registry at startup.
package normalisers
