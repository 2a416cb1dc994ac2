// Package firstworld enriches stored titles with a production-country
// classification sourced from the OMDb API. The review pipeline can gate
// scraping on a positive verdict.
package firstworld
