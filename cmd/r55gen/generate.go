package main

import (
	"bytes"
	"fmt"
	"go/ast"
	"go/format"
	"go/parser"
	"go/token"
	"go/types"
	"sort"
	"strings"
	"text/template"

	"golang.org/x/tools/go/packages"
)

// contractDirective is the comment that marks a type as a guest contract.
// It must appear as its own doc-comment line immediately above the type
// declaration, e.g.:
//
//	//r55vm:contract
//	type Token struct { ... }
const contractDirective = "r55vm:contract"

// wordKind is one of the fixed-width argument/return shapes abiword knows
// how to move across the calldata boundary.
type wordKind int

const (
	wordUint64 wordKind = iota
	wordAddress
	wordBool
)

func (k wordKind) decodeCall() string {
	switch k {
	case wordAddress:
		return "Address"
	case wordBool:
		return "Bool"
	default:
		return "Uint64"
	}
}

func (k wordKind) goType() string {
	switch k {
	case wordAddress:
		return "guest.Address"
	case wordBool:
		return "bool"
	default:
		return "uint64"
	}
}

type methodParam struct {
	Name string
	Kind wordKind
}

type methodSpec struct {
	Name     string
	Selector uint32
	Params   []methodParam
	HasResult bool
	Result   wordKind
}

type contractSpec struct {
	PackageName string
	TypeName    string
	Methods     []methodSpec
}

// loadContract parses dir's package, locates the type carrying the
// contractDirective (or matching wantType, if non-empty, when a package
// defines more than one), and collects its exported methods in
// declaration order.
func loadContract(dir, wantType string) (*contractSpec, error) {
	cfg := &packages.Config{
		Mode: packages.NeedName | packages.NeedFiles | packages.NeedCompiledGoFiles |
			packages.NeedSyntax | packages.NeedTypes | packages.NeedTypesInfo,
		Dir: dir,
		ParseFile: func(fset *token.FileSet, filename string, src []byte) (*ast.File, error) {
			return parser.ParseFile(fset, filename, src, parser.ParseComments)
		},
	}
	pkgs, err := packages.Load(cfg, ".")
	if err != nil {
		return nil, fmt.Errorf("r55gen: loading %s: %w", dir, err)
	}
	if packages.PrintErrors(pkgs) > 0 {
		return nil, fmt.Errorf("r55gen: package %s has errors", dir)
	}
	if len(pkgs) != 1 {
		return nil, fmt.Errorf("r55gen: expected exactly one package in %s, found %d", dir, len(pkgs))
	}
	pkg := pkgs[0]

	files := append([]*ast.File{}, pkg.Syntax...)
	sort.Slice(files, func(i, j int) bool {
		return pkg.Fset.Position(files[i].Pos()).Filename < pkg.Fset.Position(files[j].Pos()).Filename
	})

	typeName, err := findContractType(files, wantType)
	if err != nil {
		return nil, err
	}

	spec := &contractSpec{PackageName: pkg.Name, TypeName: typeName}
	for _, f := range files {
		for _, decl := range f.Decls {
			fn, ok := decl.(*ast.FuncDecl)
			if !ok || fn.Recv == nil || len(fn.Recv.List) != 1 {
				continue
			}
			if recvTypeName(fn.Recv.List[0].Type) != typeName {
				continue
			}
			if !ast.IsExported(fn.Name.Name) {
				continue
			}
			m, err := buildMethodSpec(fn, pkg.TypesInfo)
			if err != nil {
				return nil, fmt.Errorf("r55gen: method %s.%s: %w", typeName, fn.Name.Name, err)
			}
			m.Selector = uint32(len(spec.Methods))
			spec.Methods = append(spec.Methods, m)
		}
	}
	if len(spec.Methods) == 0 {
		return nil, fmt.Errorf("r55gen: %s has no exported methods to dispatch", typeName)
	}
	return spec, nil
}

func findContractType(files []*ast.File, wantType string) (string, error) {
	var found []string
	for _, f := range files {
		for _, decl := range f.Decls {
			gd, ok := decl.(*ast.GenDecl)
			if !ok || gd.Tok != token.TYPE {
				continue
			}
			for _, spec := range gd.Specs {
				ts, ok := spec.(*ast.TypeSpec)
				if !ok {
					continue
				}
				if !hasDirective(gd.Doc) && !hasDirective(ts.Doc) {
					continue
				}
				found = append(found, ts.Name.Name)
			}
		}
	}
	if wantType != "" {
		for _, name := range found {
			if name == wantType {
				return wantType, nil
			}
		}
		return "", fmt.Errorf("r55gen: type %q not marked with //%s", wantType, contractDirective)
	}
	switch len(found) {
	case 0:
		return "", fmt.Errorf("r55gen: no type marked with //%s", contractDirective)
	case 1:
		return found[0], nil
	default:
		return "", fmt.Errorf("r55gen: multiple types marked with //%s (%s); pass --type", contractDirective, strings.Join(found, ", "))
	}
}

func hasDirective(cg *ast.CommentGroup) bool {
	if cg == nil {
		return false
	}
	for _, c := range cg.List {
		if strings.TrimSpace(strings.TrimPrefix(c.Text, "//")) == contractDirective {
			return true
		}
	}
	return false
}

func recvTypeName(expr ast.Expr) string {
	if star, ok := expr.(*ast.StarExpr); ok {
		expr = star.X
	}
	if id, ok := expr.(*ast.Ident); ok {
		return id.Name
	}
	return ""
}

func buildMethodSpec(fn *ast.FuncDecl, info *types.Info) (methodSpec, error) {
	m := methodSpec{Name: fn.Name.Name}
	if fn.Type.Params != nil {
		for _, field := range fn.Type.Params.List {
			kind, ok := classifyType(info.TypeOf(field.Type))
			if !ok {
				return m, fmt.Errorf("unsupported parameter type %s", typeString(field.Type))
			}
			if len(field.Names) == 0 {
				return m, fmt.Errorf("unnamed parameter of type %s", typeString(field.Type))
			}
			for _, name := range field.Names {
				m.Params = append(m.Params, methodParam{Name: name.Name, Kind: kind})
			}
		}
	}
	if fn.Type.Results != nil {
		switch len(fn.Type.Results.List) {
		case 0:
		case 1:
			r := fn.Type.Results.List[0]
			if len(r.Names) > 1 {
				return m, fmt.Errorf("at most one result value is supported")
			}
			kind, ok := classifyType(info.TypeOf(r.Type))
			if !ok {
				return m, fmt.Errorf("unsupported result type %s", typeString(r.Type))
			}
			m.HasResult = true
			m.Result = kind
		default:
			return m, fmt.Errorf("at most one result value is supported")
		}
	}
	return m, nil
}

func typeString(expr ast.Expr) string {
	var buf bytes.Buffer
	_ = format.Node(&buf, token.NewFileSet(), expr)
	return buf.String()
}

func classifyType(t types.Type) (wordKind, bool) {
	if t == nil {
		return 0, false
	}
	if basic, ok := t.Underlying().(*types.Basic); ok {
		switch basic.Kind() {
		case types.Uint64:
			return wordUint64, true
		case types.Bool:
			return wordBool, true
		}
	}
	if named, ok := t.(*types.Named); ok {
		obj := named.Obj()
		if obj != nil && obj.Name() == "Address" && obj.Pkg() != nil &&
			strings.HasSuffix(obj.Pkg().Path(), "/pkg/guest") {
			return wordAddress, true
		}
	}
	return 0, false
}

var dispatchTemplate = template.Must(template.New("dispatch").Parse(`// Code generated by r55gen. DO NOT EDIT.

package {{.PackageName}}

import (
	"encoding/binary"

	"github.com/r55-labs/r55vm/internal/abiword"
	"github.com/r55-labs/r55vm/pkg/guest"
)

// New{{.TypeName}} returns a fresh {{.TypeName}} ready for guest.Main.
func New{{.TypeName}}() guest.Contract {
	return &{{.TypeName}}{}
}

// Dispatch reads a 4-byte little-endian selector off calldata, decodes the
// matching method's arguments with abiword, invokes it, and encodes its
// result (if any) as the return payload. An unrecognized selector or a
// calldata buffer too short for its arguments reverts the call.
func (c *{{.TypeName}}) Dispatch(calldata []byte) []byte {
	if len(calldata) < 4 {
		guest.Revert()
		return nil
	}
	selector := binary.LittleEndian.Uint32(calldata[:4])
	dec := abiword.NewDecoder(calldata[4:])
	switch selector {
{{- range .Methods}}
	case {{.Selector}}: // {{.Name}}
{{- range .Params}}
		{{.Name}}, err := dec.{{.Kind.decodeCall}}()
		if err != nil {
			guest.Revert()
			return nil
		}
{{- end}}
{{- if .HasResult}}
		result := c.{{.Name}}({{range $i, $p := .Params}}{{if $i}}, {{end}}{{if eq $p.Kind 1}}guest.Address({{$p.Name}}){{else}}{{$p.Name}}{{end}}{{end}})
		return abiword.NewEncoder().{{.Result.decodeCall}}({{if eq .Result 1}}abiword.Address(result){{else}}result{{end}}).Bytes()
{{- else}}
		c.{{.Name}}({{range $i, $p := .Params}}{{if $i}}, {{end}}{{if eq $p.Kind 1}}guest.Address({{$p.Name}}){{else}}{{$p.Name}}{{end}}{{end}})
		return nil
{{- end}}
{{- end}}
	default:
		guest.Revert()
		return nil
	}
}
`))

func render(spec *contractSpec) ([]byte, error) {
	var buf bytes.Buffer
	if err := dispatchTemplate.Execute(&buf, spec); err != nil {
		return nil, fmt.Errorf("r55gen: rendering template: %w", err)
	}
	out, err := format.Source(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("r55gen: formatting generated source: %w\n%s", err, buf.String())
	}
	return out, nil
}
