// Package templates holds the shared page chrome as templ components.
package templates

//go:generate go tool templ generate -path .
