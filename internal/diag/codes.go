package diag

import (
	"fmt"
)

type Code uint16

const (
	// Неизвестная ошибка - на первое время
	UnknownCode Code = 0

	// Семантические
	SemaInfo                   Code = 3000
	SemaDuplicateSymbol        Code = 3001
	SemaUnresolvedSymbol       Code = 3002
	SemaAmbiguousSymbol        Code = 3003
	SemaTypeMismatch           Code = 3004
	SemaNotAnLValue            Code = 3005
	SemaAssignToConst          Code = 3006
	SemaAssignToFunction       Code = 3007
	SemaIndexNotInteger        Code = 3008
	SemaNotIndexable           Code = 3009
	SemaArgCountMismatch       Code = 3010
	SemaArgTypeMismatch        Code = 3011
	SemaLiteralOutOfRange      Code = 3012
	SemaUnknownField           Code = 3013
	SemaNoMember               Code = 3014
	SemaInvalidCast            Code = 3015
	SemaCyclicDependency       Code = 3016
	SemaMissingReturn          Code = 3017
	SemaUnknownLabel           Code = 3018
	SemaDuplicateLabel         Code = 3019
	SemaBreakOutsideLoop       Code = 3020
	SemaMixedAssociativity     Code = 3021
	SemaNonAssociative         Code = 3022
	SemaUnknownOperator        Code = 3023
	SemaAmbiguousOperator      Code = 3024
	SemaBadPrecedence          Code = 3025
	SemaNotCallable            Code = 3026
	SemaNoMatchingOverload     Code = 3027
	SemaAmbiguousOverload      Code = 3028
	SemaNotAType               Code = 3029
	SemaNotAValue              Code = 3030
	SemaInvalidDereference     Code = 3031
	SemaInvalidAddressOf       Code = 3032
	SemaConditionNotBool       Code = 3033
	SemaNonConstantInitializer Code = 3034
	SemaVoidValue              Code = 3035
	SemaInvalidOperatorDecl    Code = 3036
	SemaInvalidType            Code = 3037
	SemaNotExported            Code = 3038
	SemaInvalidStructLiteral   Code = 3039
	SemaBuildConstant          Code = 3040
	SemaBadExtern              Code = 3041

	// I/O
	IOInfo       Code = 4000
	IOLoadFailed Code = 4001
	IODecode     Code = 4002
	IOWrite      Code = 4003
	IOCache      Code = 4004

	// Проект
	ProjInfo          Code = 5000
	ProjManifest      Code = 5001
	ProjUnknownTarget Code = 5002
	ProjNoInputs      Code = 5003
	ProjBadConstant   Code = 5004
)

var codeDescription = map[Code]string{
	UnknownCode:                "Unknown error",
	SemaInfo:                   "Semantic information",
	SemaDuplicateSymbol:        "Duplicate symbol",
	SemaUnresolvedSymbol:       "Unresolved symbol",
	SemaAmbiguousSymbol:        "Ambiguous symbol",
	SemaTypeMismatch:           "Type mismatch",
	SemaNotAnLValue:            "Expression is not assignable",
	SemaAssignToConst:          "Assignment through const",
	SemaAssignToFunction:       "Assignment to function",
	SemaIndexNotInteger:        "Index must be an integer",
	SemaNotIndexable:           "Expression is not indexable",
	SemaArgCountMismatch:       "Wrong number of arguments",
	SemaArgTypeMismatch:        "Argument type mismatch",
	SemaLiteralOutOfRange:      "Literal out of range",
	SemaUnknownField:           "Unknown field",
	SemaNoMember:               "No such member",
	SemaInvalidCast:            "Invalid cast",
	SemaCyclicDependency:       "Cyclic dependency",
	SemaMissingReturn:          "Missing return",
	SemaUnknownLabel:           "Unknown label",
	SemaDuplicateLabel:         "Duplicate label",
	SemaBreakOutsideLoop:       "Break or continue outside of loop",
	SemaMixedAssociativity:     "Mixed associativity at equal precedence",
	SemaNonAssociative:         "Non-associative operator chained",
	SemaUnknownOperator:        "Unknown operator",
	SemaAmbiguousOperator:      "Ambiguous operator declaration",
	SemaBadPrecedence:          "Operator precedence out of range",
	SemaNotCallable:            "Expression is not callable",
	SemaNoMatchingOverload:     "No matching overload",
	SemaAmbiguousOverload:      "Ambiguous overload",
	SemaNotAType:               "Name does not denote a type",
	SemaNotAValue:              "Name does not denote a value",
	SemaInvalidDereference:     "Invalid dereference",
	SemaInvalidAddressOf:       "Cannot take address",
	SemaConditionNotBool:       "Condition must be bool",
	SemaNonConstantInitializer: "Global initializer is not constant",
	SemaVoidValue:              "Zero-sized value used",
	SemaInvalidOperatorDecl:    "Invalid operator declaration",
	SemaInvalidType:            "Invalid type",
	SemaNotExported:            "Symbol is not exported",
	SemaInvalidStructLiteral:   "Invalid struct literal",
	SemaBuildConstant:          "Invalid build constant",
	SemaBadExtern:              "Invalid extern declaration",
	IOInfo:                     "I/O information",
	IOLoadFailed:               "Cannot load input",
	IODecode:                   "Cannot decode syntax tree",
	IOWrite:                    "Cannot write output",
	IOCache:                    "Cache unavailable",
	ProjInfo:                   "Project information",
	ProjManifest:               "Invalid project manifest",
	ProjUnknownTarget:          "Unknown target",
	ProjNoInputs:               "No inputs",
	ProjBadConstant:            "Invalid build constant",
}

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("SEM%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("IO%04d", ic)
	case ic >= 5000 && ic < 6000:
		return fmt.Sprintf("PRJ%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[Code(0)]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
