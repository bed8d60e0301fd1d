// Package textutil provides filename sanitization helpers shared by the
// staging and ISO packaging code.
package textutil
