// Package language maps the native-language setting onto the ISO 639-2 code
// the encoder expects for its native-language track selection.
package language
