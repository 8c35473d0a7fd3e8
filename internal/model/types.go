package model

// TransactionType identifies the kind of money movement a transaction performs.
type TransactionType string

const (
	WalletToWallet  TransactionType = "WALLET_TO_WALLET"
	WalletToMNO     TransactionType = "WALLET_TO_MNO"
	MNOToWallet     TransactionType = "MNO_TO_WALLET"
	WalletToBank    TransactionType = "WALLET_TO_BANK"
	BankToWallet    TransactionType = "BANK_TO_WALLET"
	BillPayment     TransactionType = "BILL_PAYMENT"
	MerchantPayment TransactionType = "MERCHANT_PAYMENT"
	AirtimePurchase TransactionType = "AIRTIME_PURCHASE"
	CustomType      TransactionType = "CUSTOM"
)

// TransactionTypes lists every recognized transaction type.
var TransactionTypes = []TransactionType{
	WalletToWallet, WalletToMNO, MNOToWallet, WalletToBank, BankToWallet,
	BillPayment, MerchantPayment, AirtimePurchase, CustomType,
}

// mnoTypes are the transaction types whose routing key must carry a mobile
// network: distinct mapping rows exist per carrier.
var mnoTypes = map[TransactionType]bool{
	WalletToMNO: true,
	MNOToWallet: true,
}

// RequiresNetwork reports whether the mapping key for tt must include a
// mobile network.
func (tt TransactionType) RequiresNetwork() bool {
	return mnoTypes[tt]
}

// Valid reports whether tt is a recognized transaction type.
func (tt TransactionType) Valid() bool {
	for _, t := range TransactionTypes {
		if t == tt {
			return true
		}
	}
	return false
}

// feeAtReceivingLeg marks the transaction types whose CREDIT-side fee is
// deducted from the amount delivered to the recipient. For every other type
// the fee was already charged to the payer and the credited amount is
// unchanged.
var feeAtReceivingLeg = map[TransactionType]bool{
	WalletToBank: true,
	MNOToWallet:  true,
}

// FeeDeductedOnCredit reports whether a CREDIT of this type delivers
// amount minus fee rather than the full amount.
func (tt TransactionType) FeeDeductedOnCredit() bool {
	return feeAtReceivingLeg[tt]
}

// RouteKey identifies one routing slot: transaction type, region and, for
// MNO-class types, the mobile network.
type RouteKey struct {
	TransactionType TransactionType `json:"transaction_type"`
	Region          string          `json:"region"`
	Network         *string         `json:"network,omitempty"`
}

// NetworkValue returns the network component of the key, "" when absent.
func (k RouteKey) NetworkValue() string {
	if k.Network == nil {
		return ""
	}
	return *k.Network
}

// String renders a stable cache/log key.
func (k RouteKey) String() string {
	return string(k.TransactionType) + "|" + k.Region + "|" + k.NetworkValue()
}

// TariffType scopes a tariff to platform-internal or partner-executed flows.
type TariffType string

const (
	TariffInternal TariffType = "INTERNAL"
	TariffExternal TariffType = "EXTERNAL"
)

// FeeType is the shape of a tariff's fee formula.
type FeeType string

const (
	FeeFixed      FeeType = "FIXED"
	FeePercentage FeeType = "PERCENTAGE"
	FeeTiered     FeeType = "TIERED"
	FeeHybrid     FeeType = "HYBRID"
)

// Direction is the ledger direction of the leg being settled.
type Direction string

const (
	Debit  Direction = "DEBIT"
	Credit Direction = "CREDIT"
)

// PartnerKind distinguishes fully managed external partners from API
// integration partners.
type PartnerKind string

const (
	KindExternal PartnerKind = "EXTERNAL"
	KindAPI      PartnerKind = "API"
)

// PartnerType selects which partner reference a tariff lookup matches.
type PartnerType string

const (
	ExternalPartner PartnerType = "EXTERNAL_PARTNER"
	APIPartner      PartnerType = "API_PARTNER"
)
