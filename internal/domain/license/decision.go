package license

// DenyReason identifies which validation check rejected a redemption.
// The reason stays internal; the external surface reports a generic denial.
type DenyReason string

const (
	DenyNotFound           DenyReason = "not_found"
	DenyKeyMismatch        DenyReason = "key_mismatch"
	DenyExpired            DenyReason = "expired"
	DenyAssetNotAuthorized DenyReason = "asset_not_authorized"
	DenyAssetUnavailable   DenyReason = "asset_unavailable"
)

// Decision is the outcome of validating a presented license key.
type Decision struct {
	Admitted bool
	Reason   DenyReason // set only when !Admitted
	AssetRef string     // set only when Admitted
}

// Admit builds an admitting decision carrying the resolved asset reference.
func Admit(assetRef string) Decision {
	return Decision{Admitted: true, AssetRef: assetRef}
}

// Deny builds a denying decision with the failing check's reason.
func Deny(reason DenyReason) Decision {
	return Decision{Admitted: false, Reason: reason}
}
