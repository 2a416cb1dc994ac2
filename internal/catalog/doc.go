// Package catalog ingests the bulk title datasets published as gzipped TSV
// files. It joins the basics and ratings files into media.Title values,
// keeping only the title types and vote counts the pipeline cares about.
package catalog
