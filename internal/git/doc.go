// Package git reads page history from the documentation repository: the time
// of the last commit touching each page and the current HEAD.
package git
