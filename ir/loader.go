package ir

import (
	"fmt"

	json "github.com/goccy/go-json"
)

// ErrorKind is the closed taxonomy of loader (parse) errors.
type ErrorKind int

const (
	ErrJSONParse ErrorKind = iota
	ErrInvalidFunctionsBlock
	ErrFunctionInvalidName
	ErrFunctionInvalidArgs
	ErrInvalidTypeString
	ErrFunctionInvalidInstrs
	ErrFunctionArgInvalidSpec
	ErrUnrecognizedInstr
	ErrMalformedInstr
	ErrTypeMismatch
	ErrNotAStringArray
	ErrUnimplemented
)

var errorKindText = map[ErrorKind]string{
	ErrJSONParse:              "invalid JSON",
	ErrInvalidFunctionsBlock:  "missing or non-array \"functions\" field",
	ErrFunctionInvalidName:    "function missing a string \"name\"",
	ErrFunctionInvalidArgs:    "function \"args\" is present but not an array",
	ErrInvalidTypeString:      "invalid type string (want \"int\", \"bool\" or null)",
	ErrFunctionInvalidInstrs:  "function \"instrs\" is missing or not an array",
	ErrFunctionArgInvalidSpec: "function argument missing \"name\" or \"type\"",
	ErrUnrecognizedInstr:      "unrecognized opcode",
	ErrMalformedInstr:         "malformed instruction",
	ErrTypeMismatch:           "value does not match declared type",
	ErrNotAStringArray:        "expected an array of strings",
	ErrUnimplemented:          "unimplemented value kind",
}

func (k ErrorKind) String() string { return errorKindText[k] }

// LoadError is a single loader diagnostic. Function is a best-effort
// location hint and is empty when the error predates knowing which
// function was being parsed.
type LoadError struct {
	Kind     ErrorKind
	Function string
	Detail   string
}

func (e *LoadError) Error() string {
	if e.Function != "" {
		return fmt.Sprintf("%s: %s: %s", e.Function, e.Kind, e.Detail)
	}
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
	}
	return e.Kind.String()
}

func newErr(kind ErrorKind, function, detail string) *LoadError {
	return &LoadError{Kind: kind, Function: function, Detail: detail}
}

// wire* types mirror the JSON shape of §6 before validation/conversion.
type wireProgram struct {
	Functions []wireFunction `json:"functions"`
}

type wireFunctionArg struct {
	Name *string `json:"name"`
	Type *string `json:"type"`
}

type wireFunction struct {
	Name   *string           `json:"name"`
	Type   *string           `json:"type"`
	Args   []wireFunctionArg `json:"args"`
	Instrs []json.RawMessage `json:"instrs"`
}

type wireInstr struct {
	Label  *string          `json:"label"`
	Op     *string          `json:"op"`
	Dest   *string          `json:"dest"`
	Type   *string          `json:"type"`
	Value  *json.RawMessage `json:"value"`
	Args   []string         `json:"args"`
	Funcs  []string         `json:"funcs"`
	Labels []string         `json:"labels"`
}

var (
	valueOps  = map[OpCode]bool{OpID: true, OpAdd: true, OpMul: true, OpLessThan: true, OpPhi: true}
	effectOps = map[OpCode]bool{OpPrint: true, OpRet: true, OpBranch: true, OpJump: true}
	constOps  = map[OpCode]bool{OpConst: true}
)

// Load decodes raw JSON bytes into a Program, applying every validation
// rule of the parse-error taxonomy. It returns a *LoadError on the first
// structural problem encountered within a function — unlike block-building,
// the loader does not try to accumulate multiple errors for one function,
// since a malformed instruction usually makes the rest of the function
// stream unparsable too. A parse error in any one function rejects the
// whole program: no Program is returned, not even for the functions that
// parsed cleanly.
func Load(data []byte) (*Program, error) {
	var w wireProgram
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, newErr(ErrJSONParse, "", err.Error())
	}
	if w.Functions == nil {
		return nil, newErr(ErrInvalidFunctionsBlock, "", "")
	}

	prog := &Program{Functions: make([]*Function, 0, len(w.Functions))}
	for _, wf := range w.Functions {
		fn, err := loadFunction(wf)
		if err != nil {
			return nil, err
		}
		prog.Functions = append(prog.Functions, fn)
	}
	return prog, nil
}

func loadFunction(wf wireFunction) (*Function, error) {
	if wf.Name == nil || *wf.Name == "" {
		return nil, newErr(ErrFunctionInvalidName, "", "")
	}
	name := *wf.Name

	returnType, err := loadType(wf.Type)
	if err != nil {
		return nil, newErr(err.(*LoadError).Kind, name, "return type")
	}

	args := make([]FunctionArg, 0, len(wf.Args))
	for _, wa := range wf.Args {
		arg, err := loadFunctionArg(wa)
		if err != nil {
			return nil, newErr(err.(*LoadError).Kind, name, "argument")
		}
		args = append(args, arg)
	}

	if wf.Instrs == nil {
		return nil, newErr(ErrFunctionInvalidInstrs, name, "")
	}

	instrs := make([]*Instruction, 0, len(wf.Instrs))
	for _, raw := range wf.Instrs {
		instr, err := loadInstr(raw)
		if err != nil {
			return nil, newErr(err.(*LoadError).Kind, name, err.(*LoadError).Detail)
		}
		instrs = append(instrs, instr)
	}

	return &Function{Name: name, ReturnType: returnType, Args: args, Instrs: instrs}, nil
}

func loadType(s *string) (Type, error) {
	if s == nil {
		return TypeUnit, nil
	}
	switch *s {
	case "int":
		return TypeInt, nil
	case "bool":
		return TypeBool, nil
	default:
		return TypeUnit, newErr(ErrInvalidTypeString, "", *s)
	}
}

func loadFunctionArg(wa wireFunctionArg) (FunctionArg, error) {
	if wa.Name == nil || wa.Type == nil {
		return FunctionArg{}, newErr(ErrFunctionArgInvalidSpec, "", "")
	}
	typ, err := loadType(wa.Type)
	if err != nil {
		return FunctionArg{}, err
	}
	return FunctionArg{Name: *wa.Name, Type: typ}, nil
}

func loadInstr(raw json.RawMessage) (*Instruction, error) {
	var wi wireInstr
	if err := json.Unmarshal(raw, &wi); err != nil {
		return nil, newErr(ErrMalformedInstr, "", err.Error())
	}

	if wi.Label != nil {
		return NewLabel(*wi.Label), nil
	}

	if wi.Op == nil {
		return nil, newErr(ErrMalformedInstr, "", "instruction has neither \"label\" nor \"op\"")
	}

	op, ok := ParseOpCode(*wi.Op)
	if !ok {
		return nil, newErr(ErrUnrecognizedInstr, "", *wi.Op)
	}

	switch {
	case constOps[op]:
		return loadConstInstr(op, wi)
	case effectOps[op]:
		return loadEffectInstr(op, wi)
	case valueOps[op]:
		return loadValueInstr(op, wi)
	default:
		return nil, newErr(ErrUnrecognizedInstr, "", *wi.Op)
	}
}

func loadConstInstr(op OpCode, wi wireInstr) (*Instruction, error) {
	if wi.Dest == nil {
		return nil, newErr(ErrMalformedInstr, "", "const instruction missing \"dest\"")
	}
	typ, err := loadType(wi.Type)
	if err != nil {
		return nil, err
	}
	if wi.Value == nil {
		return nil, newErr(ErrMalformedInstr, "", "const instruction missing \"value\"")
	}
	val, err := loadValue(*wi.Value, typ)
	if err != nil {
		return nil, err
	}
	return NewConst(*wi.Dest, typ, val), nil
}

func loadValueInstr(op OpCode, wi wireInstr) (*Instruction, error) {
	if wi.Dest == nil {
		return nil, newErr(ErrMalformedInstr, "", "value instruction missing \"dest\"")
	}
	typ, err := loadType(wi.Type)
	if err != nil {
		return nil, err
	}
	return NewValue(op, *wi.Dest, typ, wi.Args, wi.Funcs, wi.Labels), nil
}

func loadEffectInstr(op OpCode, wi wireInstr) (*Instruction, error) {
	return NewEffect(op, wi.Args, wi.Funcs, wi.Labels), nil
}

func loadValue(raw json.RawMessage, expected Type) (Value, error) {
	switch expected {
	case TypeInt:
		var i int32
		if err := json.Unmarshal(raw, &i); err != nil {
			return Value{}, newErr(ErrTypeMismatch, "", "expected an int literal")
		}
		return IntValue(i), nil
	case TypeBool:
		var b bool
		if err := json.Unmarshal(raw, &b); err != nil {
			return Value{}, newErr(ErrTypeMismatch, "", "expected a bool literal")
		}
		return BoolValue(b), nil
	default:
		return Value{}, newErr(ErrUnimplemented, "", "const instruction cannot have type unit")
	}
}
