package apiconnect

// Procedures returns the path of every RPC served by this package.
func Procedures() []string {
	return []string{
		UserServiceCreateUserProcedure,
		UserServiceGetUserProcedure,
		UserServiceListUsersProcedure,
		UserServiceListAvailableUsersProcedure,
		GroupServiceCreateGroupProcedure,
		GroupServiceGetGroupProcedure,
		GroupServiceListGroupsProcedure,
		GroupServiceDeleteGroupProcedure,
		GroupServiceAddMemberProcedure,
		GroupServiceRemoveMemberProcedure,
		GroupServiceGetGroupViewProcedure,
		LedgerServiceCreateTransactionProcedure,
		LedgerServiceListTransactionsProcedure,
		LedgerServiceListSettlementsProcedure,
		LedgerServiceSettleDebtProcedure,
		LedgerServiceGetGroupBalancesProcedure,
	}
}
