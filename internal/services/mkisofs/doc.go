// Package mkisofs builds ISO image command lines for mkisofs or genisoimage.
package mkisofs
