package deal

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Type is the value type of a deal field.
type Type int

const (
	TypeString Type = iota + 1
	TypeDate
	TypeMoney
	TypeInt
	TypeSide
)

func (t Type) String() string {
	switch t {
	case TypeString:
		return "string"
	case TypeDate:
		return "date"
	case TypeMoney:
		return "money"
	case TypeInt:
		return "int"
	case TypeSide:
		return "side"
	default:
		return "unknown"
	}
}

// Field names a domain concept carried by a deal record.
type Field string

// Parties and contacts.
const (
	PropertyAddress      Field = "property_address"
	Side                 Field = "side"
	BuyerName            Field = "buyer_name"
	BuyerEmail           Field = "buyer_email"
	SellerName           Field = "seller_name"
	SellerEmail          Field = "seller_email"
	AgentName            Field = "agent_name"
	AgentEmail           Field = "agent_email"
	AgentPhone           Field = "agent_phone"
	BrokerageName        Field = "brokerage_name"
	BrokerageLogo        Field = "brokerage_logo"
	OtherAgentName       Field = "other_agent_name"
	OtherAgentEmail      Field = "other_agent_email"
	OtherAgentBrokerage  Field = "other_agent_brokerage"
	PropertyPhoto        Field = "property_photo"
	ListingURL           Field = "listing_url"
	EscrowCompany        Field = "escrow_company"
	AgentSignature       Field = "agent_signature"
	AdditionalTerms      Field = "additional_terms"
	ListingHeadline      Field = "listing_headline"
	ContractDate         Field = "contract_date"
	InspectionDeadline   Field = "inspection_deadline"
	AppraisalDeadline    Field = "appraisal_deadline"
	FinancingDeadline    Field = "financing_deadline"
	FinalWalkthroughDate Field = "final_walkthrough_date"
	ClosingDate          Field = "closing_date"
	PossessionDate       Field = "possession_date"
	PurchasePrice        Field = "purchase_price"
	EarnestMoney         Field = "earnest_money"
	LoanAmount           Field = "loan_amount"
	CommissionAmount     Field = "commission_amount"
	ClosingCosts         Field = "closing_costs"
	SellerCredit         Field = "seller_credit"
	AdSpend              Field = "ad_spend"
	AdImpressions        Field = "ad_impressions"
	AdClicks             Field = "ad_clicks"
	AdLeads              Field = "ad_leads"
	DaysOnMarket         Field = "days_on_market"
)

var schema = map[Field]Type{
	PropertyAddress:      TypeString,
	Side:                 TypeSide,
	BuyerName:            TypeString,
	BuyerEmail:           TypeString,
	SellerName:           TypeString,
	SellerEmail:          TypeString,
	AgentName:            TypeString,
	AgentEmail:           TypeString,
	AgentPhone:           TypeString,
	BrokerageName:        TypeString,
	BrokerageLogo:        TypeString,
	OtherAgentName:       TypeString,
	OtherAgentEmail:      TypeString,
	OtherAgentBrokerage:  TypeString,
	PropertyPhoto:        TypeString,
	ListingURL:           TypeString,
	EscrowCompany:        TypeString,
	AgentSignature:       TypeString,
	AdditionalTerms:      TypeString,
	ListingHeadline:      TypeString,
	ContractDate:         TypeDate,
	InspectionDeadline:   TypeDate,
	AppraisalDeadline:    TypeDate,
	FinancingDeadline:    TypeDate,
	FinalWalkthroughDate: TypeDate,
	ClosingDate:          TypeDate,
	PossessionDate:       TypeDate,
	PurchasePrice:        TypeMoney,
	EarnestMoney:         TypeMoney,
	LoanAmount:           TypeMoney,
	CommissionAmount:     TypeMoney,
	ClosingCosts:         TypeMoney,
	SellerCredit:         TypeMoney,
	AdSpend:              TypeMoney,
	AdImpressions:        TypeInt,
	AdClicks:             TypeInt,
	AdLeads:              TypeInt,
	DaysOnMarket:         TypeInt,
}

// TypeOf reports the schema type of f.
func TypeOf(f Field) (Type, bool) {
	t, ok := schema[f]
	return t, ok
}

// Party is the side of the transaction the agent represents.
type Party string

const (
	Buyer  Party = "buyer"
	Seller Party = "seller"
	Dual   Party = "dual"
)

// Valid reports whether p is a known side.
func (p Party) Valid() bool {
	switch p {
	case Buyer, Seller, Dual:
		return true
	}
	return false
}

// Money is an amount in integer cents.
type Money int64

// Dollars returns the amount as a float for display formatting.
func (m Money) Dollars() float64 {
	return float64(m) / 100
}

// DateLayout is the wire layout of date fields.
const DateLayout = time.DateOnly

// checkValue verifies that v matches the Go type of t.
func checkValue(t Type, v any) (any, error) {
	switch t {
	case TypeString:
		if s, ok := v.(string); ok {
			return s, nil
		}
	case TypeDate:
		if d, ok := v.(time.Time); ok {
			y, m, day := d.Date()
			return time.Date(y, m, day, 0, 0, 0, 0, time.UTC), nil
		}
	case TypeMoney:
		if m, ok := v.(Money); ok {
			return m, nil
		}
	case TypeInt:
		if n, ok := v.(int); ok {
			return n, nil
		}
	case TypeSide:
		if p, ok := v.(Party); ok && p.Valid() {
			return p, nil
		}
	}
	return nil, fmt.Errorf("%w: want %s, got %T", ErrInvalidValue, t, v)
}

// encodeValue converts a checked value into its wire form.
func encodeValue(t Type, v any) any {
	switch t {
	case TypeDate:
		return v.(time.Time).Format(DateLayout)
	case TypeMoney:
		return int64(v.(Money))
	case TypeSide:
		return string(v.(Party))
	default:
		return v
	}
}

// decodeValue converts a wire value produced by JSON, BSON or JSONB decoding
// into the Go type of t.
func decodeValue(t Type, raw any) (any, error) {
	switch t {
	case TypeString:
		if s, ok := raw.(string); ok {
			return s, nil
		}
	case TypeDate:
		if s, ok := raw.(string); ok {
			d, err := time.Parse(DateLayout, s)
			if err != nil {
				return nil, fmt.Errorf("%w: %w", ErrInvalidValue, err)
			}
			return d, nil
		}
	case TypeMoney:
		n, err := integer(raw)
		if err != nil {
			return nil, err
		}
		return Money(n), nil
	case TypeInt:
		n, err := integer(raw)
		if err != nil {
			return nil, err
		}
		return int(n), nil
	case TypeSide:
		if s, ok := raw.(string); ok {
			p := Party(strings.ToLower(s))
			if p.Valid() {
				return p, nil
			}
			return nil, fmt.Errorf("%w: unknown side %q", ErrInvalidValue, s)
		}
	}
	return nil, fmt.Errorf("%w: want %s, got %T", ErrInvalidValue, t, raw)
}

func integer(raw any) (int64, error) {
	switch n := raw.(type) {
	case json.Number:
		v, err := strconv.ParseInt(n.String(), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %w", ErrInvalidValue, err)
		}
		return v, nil
	case int:
		return int64(n), nil
	case int32:
		return int64(n), nil
	case int64:
		return n, nil
	case float64:
		if n != math.Trunc(n) {
			return 0, fmt.Errorf("%w: %v is not an integer", ErrInvalidValue, n)
		}
		return int64(n), nil
	}
	return 0, fmt.Errorf("%w: want integer, got %T", ErrInvalidValue, raw)
}
