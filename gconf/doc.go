/*
Package gconf provides a toolset for managing an extension configuration.

Every extension can declare a configuration object that is stored as a
singleton in the database, under a key derived from the package name.
Configuration is initialized from the genesis and can be updated at
runtime by a message, authenticated against the owner address declared
in the configuration itself.

*/
package gconf
