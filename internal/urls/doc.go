// Package urls provides centralized constants for the vendor cloud endpoints
// used throughout the application.
//
// Usage:
//
//	import "github.com/shossk/cocoro-sdk/internal/urls"
//
//	endpoint := urls.APIBase + urls.PathBoxInfo
package urls
