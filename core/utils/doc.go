// Package utils provides small conversion helpers shared by the registry packages:
// loose scalar conversion for preference values and strict id key parsing for
// flat records.
package utils
