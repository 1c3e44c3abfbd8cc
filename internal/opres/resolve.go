package opres

// BinaryBuilder combines two operands with the infix operator found at
// position index of the original sequence.
type BinaryBuilder[T any] func(op *Decl, index int, lhs, rhs T) T

// Resolve folds an alternating sequence operands[0] ops[0] operands[1] ...
// into a single tree by precedence and associativity.
//
// The loosest precedence level present is split first. Every operator on
// that level must share one associativity; a non-associative operator may
// appear on its level only once.
func Resolve[T any](operands []T, ops []*Decl, build BinaryBuilder[T]) (T, error) {
	var zero T
	if len(operands) == 0 || len(operands) != len(ops)+1 {
		return zero, &Error{Kind: ErrMalformedSequence, Index: -1}
	}
	for i, op := range ops {
		if op == nil || op.Fixity != Infix {
			return zero, &Error{Kind: ErrMalformedSequence, Index: i}
		}
	}
	out, err := resolve(operands, ops, 0, build)
	if err != nil {
		return zero, err
	}
	return out, nil
}

func resolve[T any](operands []T, ops []*Decl, base int, build BinaryBuilder[T]) (T, *Error) {
	var zero T
	switch len(ops) {
	case 0:
		return operands[0], nil
	case 1:
		return build(ops[0], base, operands[0], operands[1]), nil
	}

	lowest := ops[0].Precedence
	for _, op := range ops[1:] {
		lowest = min(lowest, op.Precedence)
	}
	var split []int
	var level []*Decl
	for i, op := range ops {
		if op.Precedence != lowest {
			continue
		}
		split = append(split, i)
		if !containsDecl(level, op) {
			level = append(level, op)
		}
	}
	assoc := level[0].Assoc
	for _, op := range level[1:] {
		if op.Assoc != assoc {
			return zero, &Error{Kind: ErrMixedAssociativity, Symbol: op.Symbol, Fixity: Infix, Index: base + split[0], Candidates: level}
		}
	}
	if assoc == AssocNone && len(split) > 1 {
		return zero, &Error{Kind: ErrNonAssociative, Symbol: ops[split[1]].Symbol, Fixity: Infix, Index: base + split[1]}
	}

	parts := make([]T, 0, len(split)+1)
	start := 0
	for _, at := range split {
		sub, err := resolve(operands[start:at+1], ops[start:at], base+start, build)
		if err != nil {
			return zero, err
		}
		parts = append(parts, sub)
		start = at + 1
	}
	tail, err := resolve(operands[start:], ops[start:], base+start, build)
	if err != nil {
		return zero, err
	}
	parts = append(parts, tail)

	if assoc == AssocRight {
		acc := parts[len(parts)-1]
		for k := len(split) - 1; k >= 0; k-- {
			acc = build(ops[split[k]], base+split[k], parts[k], acc)
		}
		return acc, nil
	}
	acc := parts[0]
	for k, at := range split {
		acc = build(ops[at], base+at, acc, parts[k+1])
	}
	return acc, nil
}

func containsDecl(list []*Decl, d *Decl) bool {
	for _, x := range list {
		if x == d {
			return true
		}
	}
	return false
}

// ApplyUnary wraps operand in its operator runs. Postfix operators bind
// tighter and apply left to right; prefix operators then apply right to left.
func ApplyUnary[T any](operand T, prefix, postfix []*Decl, build func(op *Decl, x T) T) T {
	acc := operand
	for _, op := range postfix {
		acc = build(op, acc)
	}
	for i := len(prefix) - 1; i >= 0; i-- {
		acc = build(prefix[i], acc)
	}
	return acc
}
