// Package innervoice holds build metadata shared by the innervoice binaries.
package innervoice

// Version is the current release of innervoice.
const Version = "0.3.0"
