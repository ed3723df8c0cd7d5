// Package file provides the TOML configuration store kept in the dpres
// config directory (~/.dpres by default).
package file
