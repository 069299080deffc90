package handlers

// Permission policies are plain functions from (identity, resource owner) to
// a decision, composed at the call site instead of inherited. Read access is
// expressed by route placement: read routes sit on the public group, mutation
// routes on the token-protected group.

// ownerOnly grants a mutation iff the acting identity is the owner of the
// resource. An unauthenticated identity (0) is always denied.
func ownerOnly(userID, ownerID uint) bool {
	return userID != 0 && userID == ownerID
}
