/*
Package gconf provides a toolset for managing a per-package configuration
singleton.

Each package can declare its own configuration object. The configuration is
stored in the database under a key derived from the package name, so there
is always at most one configuration per package.
*/
package gconf
