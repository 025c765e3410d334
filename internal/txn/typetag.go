package txn

import (
	"strings"

	bridgeerr "github.com/halcyonlabs/walletbridge/pkg/errors"
)

// TypeTagKind enumerates the supported type-tag variants. Values match the
// BCS enum variant indexes.
type TypeTagKind uint8

// Type-tag variant indexes.
const (
	TypeTagBool    TypeTagKind = 0
	TypeTagU8      TypeTagKind = 1
	TypeTagU64     TypeTagKind = 2
	TypeTagU128    TypeTagKind = 3
	TypeTagAddress TypeTagKind = 4
	TypeTagSigner  TypeTagKind = 5
	TypeTagVector  TypeTagKind = 6
	TypeTagStruct  TypeTagKind = 7
)

// TypeTag describes a type argument of an entry function.
type TypeTag struct {
	Kind   TypeTagKind
	Elem   *TypeTag   // set for vector tags
	Struct *StructTag // set for struct tags
}

// StructTag identifies a struct type, possibly with its own type arguments.
type StructTag struct {
	Address  AccountAddress
	Module   string
	Name     string
	TypeArgs []TypeTag
}

// String renders the canonical textual form of the tag.
func (t TypeTag) String() string {
	switch t.Kind {
	case TypeTagBool:
		return "bool"
	case TypeTagU8:
		return "u8"
	case TypeTagU64:
		return "u64"
	case TypeTagU128:
		return "u128"
	case TypeTagAddress:
		return "address"
	case TypeTagSigner:
		return "signer"
	case TypeTagVector:
		if t.Elem == nil {
			return "vector<?>"
		}
		return "vector<" + t.Elem.String() + ">"
	case TypeTagStruct:
		if t.Struct == nil {
			return "struct<?>"
		}
		return t.Struct.String()
	default:
		return "unknown"
	}
}

// String renders "address::module::Name" with any type arguments.
func (s StructTag) String() string {
	var sb strings.Builder
	sb.WriteString(s.Address.String())
	sb.WriteString("::")
	sb.WriteString(s.Module)
	sb.WriteString("::")
	sb.WriteString(s.Name)
	if len(s.TypeArgs) > 0 {
		sb.WriteString("<")
		for i, arg := range s.TypeArgs {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(arg.String())
		}
		sb.WriteString(">")
	}
	return sb.String()
}

// ParseTypeTag parses the textual type-tag form used by the older payload
// shape, e.g. "u64", "vector<u8>", "0x1::coin::Coin<u64>".
func ParseTypeTag(s string) (TypeTag, error) {
	s = strings.TrimSpace(s)

	switch s {
	case "bool":
		return TypeTag{Kind: TypeTagBool}, nil
	case "u8":
		return TypeTag{Kind: TypeTagU8}, nil
	case "u64":
		return TypeTag{Kind: TypeTagU64}, nil
	case "u128":
		return TypeTag{Kind: TypeTagU128}, nil
	case "address":
		return TypeTag{Kind: TypeTagAddress}, nil
	case "signer":
		return TypeTag{Kind: TypeTagSigner}, nil
	}

	if inner, ok := strings.CutPrefix(s, "vector<"); ok {
		if !strings.HasSuffix(inner, ">") {
			return TypeTag{}, bridgeerr.Wrap(bridgeerr.ErrInvalidInput, "unterminated vector tag %q", s)
		}
		elem, err := ParseTypeTag(strings.TrimSuffix(inner, ">"))
		if err != nil {
			return TypeTag{}, err
		}
		return TypeTag{Kind: TypeTagVector, Elem: &elem}, nil
	}

	st, err := parseStructTag(s)
	if err != nil {
		return TypeTag{}, err
	}
	return TypeTag{Kind: TypeTagStruct, Struct: st}, nil
}

// parseStructTag parses "address::module::Name" with optional "<...>"
// type arguments, splitting nested generics at depth zero.
func parseStructTag(s string) (*StructTag, error) {
	generics := ""
	if open := strings.Index(s, "<"); open >= 0 {
		if !strings.HasSuffix(s, ">") {
			return nil, bridgeerr.Wrap(bridgeerr.ErrInvalidInput, "unterminated type arguments in %q", s)
		}
		generics = s[open+1 : len(s)-1]
		s = s[:open]
	}

	parts := strings.Split(s, "::")
	if len(parts) != 3 || parts[1] == "" || parts[2] == "" {
		return nil, bridgeerr.Wrap(bridgeerr.ErrInvalidInput, "struct tag %q is not address::module::Name", s)
	}

	addr, err := ParseAddress(parts[0])
	if err != nil {
		return nil, err
	}

	st := &StructTag{Address: addr, Module: parts[1], Name: parts[2]}

	if generics != "" {
		for _, piece := range splitTopLevel(generics) {
			arg, parseErr := ParseTypeTag(piece)
			if parseErr != nil {
				return nil, parseErr
			}
			st.TypeArgs = append(st.TypeArgs, arg)
		}
	}

	return st, nil
}

// splitTopLevel splits on commas that are not inside nested angle brackets.
func splitTopLevel(s string) []string {
	var parts []string
	depth := 0
	start := 0
	for i, r := range s {
		switch r {
		case '<':
			depth++
		case '>':
			depth--
		case ',':
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	parts = append(parts, s[start:])
	return parts
}
