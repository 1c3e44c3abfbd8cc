package types

import (
	"strconv"
	"strings"
)

// TypeString renders t in source syntax.
func (in *Interner) TypeString(t TypeID) string {
	var sb strings.Builder
	in.writeType(&sb, t)
	return sb.String()
}

func (in *Interner) writeType(sb *strings.Builder, t TypeID) {
	tt, ok := in.Lookup(t)
	if !ok {
		sb.WriteString("<invalid>")
		return
	}
	switch tt.Kind {
	case KindBuiltin:
		sb.WriteString(tt.Builtin.String())
	case KindConst:
		sb.WriteString("const ")
		in.writeType(sb, tt.Elem)
	case KindPointer:
		if tt.Nullable {
			sb.WriteByte('?')
		}
		sb.WriteByte('*')
		in.writeType(sb, tt.Elem)
	case KindArray:
		sb.WriteByte('[')
		sb.WriteString(strconv.FormatUint(uint64(tt.Count), 10))
		sb.WriteByte(']')
		in.writeType(sb, tt.Elem)
	case KindSlice:
		sb.WriteString("[]")
		in.writeType(sb, tt.Elem)
	case KindStruct:
		if info, ok := in.StructInfo(t); ok {
			sb.WriteString(info.QualifiedName())
		} else {
			sb.WriteString("<struct>")
		}
	case KindTuple:
		info, _ := in.TupleInfo(t)
		sb.WriteByte('(')
		if info != nil {
			for i, e := range info.Elems {
				if i > 0 {
					sb.WriteString(", ")
				}
				in.writeType(sb, e)
			}
			if len(info.Elems) == 1 {
				sb.WriteByte(',')
			}
		}
		sb.WriteByte(')')
	case KindFunc:
		info, _ := in.FnInfo(t)
		sb.WriteString("fn(")
		if info != nil {
			for i, p := range info.Params {
				if i > 0 {
					sb.WriteString(", ")
				}
				in.writeType(sb, p)
			}
			if info.Variadic {
				if len(info.Params) > 0 {
					sb.WriteString(", ")
				}
				sb.WriteString("...")
			}
			sb.WriteString(") -> ")
			in.writeType(sb, info.Result)
		} else {
			sb.WriteByte(')')
		}
	default:
		sb.WriteString("<invalid>")
	}
}

func qualify(module []string, name string) string {
	if len(module) == 0 {
		return name
	}
	return strings.Join(module, ".") + "." + name
}
