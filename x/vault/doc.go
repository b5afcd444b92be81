/*
Package vault provides the share pricing collaborator of the yield stream
engine.

A Vault converts between asset and share amounts and moves tokens when
depositing or redeeming. The core engine only consumes the narrow Vault
interface. The reference implementation, RateVault, prices shares by a
configured exchange rate that may only appreciate.
*/
package vault
