// Package domain defines the records the bot persists: advertised
// groups, the user ledger, payments and payment settings.
package domain

// Group is an advertised channel or group. The name is the unique key;
// re-adding an existing name overwrites the stored link.
type Group struct {
	Name string
	Link string
}
