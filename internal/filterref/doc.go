// Package filterref prints a git ref only when its commit falls inside an age window,
// so shell pipelines can filter refs by recency.
package filterref
