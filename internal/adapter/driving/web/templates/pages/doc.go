// Package pages holds full page bodies rendered inside templates.Layout.
package pages
