package domain

import (
	"fmt"
	"sort"
	"strings"
)

// EntityType is a PII type label reported by the entity detection service.
type EntityType string

// Universal entity types
const (
	EntityBankAccountNumber EntityType = "BANK_ACCOUNT_NUMBER"
	EntityBankRouting       EntityType = "BANK_ROUTING"
	EntityCreditDebitNumber EntityType = "CREDIT_DEBIT_NUMBER"
	EntityCreditDebitCVV    EntityType = "CREDIT_DEBIT_CVV"
	EntityCreditDebitExpiry EntityType = "CREDIT_DEBIT_EXPIRY"
	EntityPIN               EntityType = "PIN"
	EntityEmail             EntityType = "EMAIL"
	EntityAddress           EntityType = "ADDRESS"
	EntityName              EntityType = "NAME"
	EntityPhone             EntityType = "PHONE"
	EntityDateTime          EntityType = "DATE_TIME"
	EntityURL               EntityType = "URL"
	EntityAge               EntityType = "AGE"
	EntityUsername          EntityType = "USERNAME"
	EntityPassword          EntityType = "PASSWORD"
	EntityAWSAccessKey      EntityType = "AWS_ACCESS_KEY"
	EntityAWSSecretKey      EntityType = "AWS_SECRET_KEY"
	EntityIPAddress         EntityType = "IP_ADDRESS"
	EntityMACAddress        EntityType = "MAC_ADDRESS"
	EntityDriverID          EntityType = "DRIVER_ID"
	EntityPassportNumber    EntityType = "PASSPORT_NUMBER"
	EntityLicensePlate      EntityType = "LICENSE_PLATE"
	EntityVehicleID         EntityType = "VEHICLE_IDENTIFICATION_NUMBER"
	EntityIBAN              EntityType = "INTERNATIONAL_BANK_ACCOUNT_NUMBER"
	EntitySwiftCode         EntityType = "SWIFT_CODE"
)

// Country-specific entity types
const (
	EntitySSN                 EntityType = "SSN"
	EntityUSITIN              EntityType = "US_INDIVIDUAL_TAX_IDENTIFICATION_NUMBER"
	EntityUKNationalInsurance EntityType = "UK_NATIONAL_INSURANCE_NUMBER"
	EntityUKTaxpayerRef       EntityType = "UK_UNIQUE_TAXPAYER_REFERENCE_NUMBER"
	EntityUKNHSNumber         EntityType = "UK_NATIONAL_HEALTH_SERVICE_NUMBER"
	EntityCASocialInsurance   EntityType = "CA_SOCIAL_INSURANCE_NUMBER"
	EntityCAHealthNumber      EntityType = "CA_HEALTH_NUMBER"
	EntityINAadhaar           EntityType = "IN_AADHAAR"
	EntityINNREGA             EntityType = "IN_NREGA"
	EntityINPAN               EntityType = "IN_PERMANENT_ACCOUNT_NUMBER"
	EntityINVoterNumber       EntityType = "IN_VOTER_NUMBER"
)

var knownEntityTypes = map[EntityType]bool{
	EntityBankAccountNumber: true, EntityBankRouting: true, EntityCreditDebitNumber: true,
	EntityCreditDebitCVV: true, EntityCreditDebitExpiry: true, EntityPIN: true, EntityEmail: true,
	EntityAddress: true, EntityName: true, EntityPhone: true, EntityDateTime: true, EntityURL: true,
	EntityAge: true, EntityUsername: true, EntityPassword: true, EntityAWSAccessKey: true,
	EntityAWSSecretKey: true, EntityIPAddress: true, EntityMACAddress: true, EntityDriverID: true,
	EntityPassportNumber: true, EntityLicensePlate: true, EntityVehicleID: true, EntityIBAN: true,
	EntitySwiftCode: true,

	EntitySSN: true, EntityUSITIN: true, EntityUKNationalInsurance: true, EntityUKTaxpayerRef: true,
	EntityUKNHSNumber: true, EntityCASocialInsurance: true, EntityCAHealthNumber: true,
	EntityINAadhaar: true, EntityINNREGA: true, EntityINPAN: true, EntityINVoterNumber: true,
}

// Valid reports whether t belongs to the entity vocabulary
func (t EntityType) Valid() bool {
	return knownEntityTypes[t]
}

// PiiEntity is a single detection returned by the entity detection service.
type PiiEntity struct {
	Type        EntityType `json:"type"`
	Score       float64    `json:"score"`
	BeginOffset int        `json:"begin_offset"`
	EndOffset   int        `json:"end_offset"`
}

// AllowList is an immutable set of entity types considered relevant for a deployment.
// The zero value is an empty list.
type AllowList struct {
	types map[EntityType]struct{}
}

// NewAllowList builds an AllowList, rejecting labels outside the vocabulary
func NewAllowList(types ...EntityType) (AllowList, error) {
	set := make(map[EntityType]struct{}, len(types))
	for _, t := range types {
		if !t.Valid() {
			return AllowList{}, fmt.Errorf("%w: unknown pii entity type %q", ErrInvalidInput, t)
		}
		set[t] = struct{}{}
	}
	return AllowList{types: set}, nil
}

// ParseAllowList parses a configured list such as "SSN,EMAIL" or "['SSN', 'EMAIL']".
// Labels may be separated by commas and/or whitespace. An empty string yields an empty list.
func ParseAllowList(raw string) (AllowList, error) {
	fields := strings.FieldsFunc(raw, func(r rune) bool {
		switch r {
		case ',', ' ', '\t', '\n', '\r', '[', ']', '\'', '"':
			return true
		}
		return false
	})

	types := make([]EntityType, 0, len(fields))
	for _, f := range fields {
		types = append(types, EntityType(strings.ToUpper(f)))
	}
	return NewAllowList(types...)
}

// Contains reports whether t is in the list
func (l AllowList) Contains(t EntityType) bool {
	_, ok := l.types[t]
	return ok
}

// Len returns the number of types in the list
func (l AllowList) Len() int {
	return len(l.types)
}

// Types returns the list contents in sorted order
func (l AllowList) Types() []EntityType {
	out := make([]EntityType, 0, len(l.types))
	for t := range l.types {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// String renders the list as a comma separated string
func (l AllowList) String() string {
	types := l.Types()
	parts := make([]string, len(types))
	for i, t := range types {
		parts[i] = string(t)
	}
	return strings.Join(parts, ",")
}
