// Package emit renders a schema model as TypeScript declarations for the
// kysely query builder.
package emit

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/koustreak/typegen/internal/naming"
	"github.com/koustreak/typegen/internal/schema"
)

// Header opens every generated document.
const Header = `/**
 * This file was generated by typegen.
 * Please do not edit it manually.
 */`

// Options are the rendering switches that are not naming concerns.
type Options struct {
	Policy       naming.Policy
	RuntimeEnums bool
}

type helper int

const (
	helperGenerated helper = iota
	helperInt8
	helperJSON
	helperNumeric
	helperTimestamp
	numHelpers
)

var helperText = [numHelpers]string{
	helperGenerated: `export type Generated<T> = T extends ColumnType<infer S, infer I, infer U>
  ? ColumnType<S, I | undefined, U>
  : ColumnType<T, T | undefined, T>;`,
	helperInt8: `export type Int8 = ColumnType<string, bigint | number | string, bigint | number | string>;`,
	helperJSON: `export type Json = ColumnType<JsonValue, string, string>;

export type JsonArray = JsonValue[];

export type JsonObject = {
  [x: string]: JsonValue | undefined;
};

export type JsonPrimitive = boolean | number | string | null;

export type JsonValue = JsonArray | JsonObject | JsonPrimitive;`,
	helperNumeric:   `export type Numeric = ColumnType<string, number | string, number | string>;`,
	helperTimestamp: `export type Timestamp = ColumnType<Date, Date | string, Date | string>;`,
}

type emitter struct {
	m     *schema.Model
	names *naming.Names
	opts  Options
	buf   strings.Builder
	used  [numHelpers]bool
}

// Emit renders m. The result is a pure function of its inputs and always
// ends with a newline.
func Emit(m *schema.Model, names *naming.Names, opts Options) string {
	e := &emitter{m: m, names: names, opts: opts}
	e.scan()

	e.buf.WriteString(Header)
	e.imports()
	e.helpers()
	e.enums()
	e.tables()
	e.root()
	return e.buf.String()
}

// scan records which shared helpers the tables need.
func (e *emitter) scan() {
	for _, t := range e.m.Tables() {
		for _, c := range t.Columns {
			if _, ok := c.Type.(schema.Literal); ok {
				continue
			}
			if c.HasDefault {
				e.used[helperGenerated] = true
			}
			e.markType(c.Type)
		}
	}
}

func (e *emitter) markType(t schema.ColumnType) {
	switch v := t.(type) {
	case schema.ArrayOf:
		e.markType(v.Elem)
	case schema.Primitive:
		switch {
		case v.Kind == schema.KindInteger && v.Repr == schema.ReprString:
			e.used[helperInt8] = true
		case v.Kind == schema.KindJSON:
			e.used[helperJSON] = true
		case v.Kind == schema.KindDecimal && v.Repr == schema.ReprString:
			e.used[helperNumeric] = true
		case v.Repr == schema.ReprTimestamp:
			e.used[helperTimestamp] = true
		}
	}
}

// section starts a new top-level declaration separated by a blank line.
func (e *emitter) section() {
	e.buf.WriteString("\n\n")
}

func (e *emitter) imports() {
	need := false
	for _, u := range e.used {
		need = need || u
	}
	if !need {
		return
	}
	e.section()
	if e.opts.Policy.TypeOnlyImports {
		e.buf.WriteString(`import type { ColumnType } from "kysely";`)
	} else {
		e.buf.WriteString(`import { ColumnType } from "kysely";`)
	}
}

func (e *emitter) helpers() {
	for h, u := range e.used {
		if u {
			e.section()
			e.buf.WriteString(helperText[h])
		}
	}
	for _, a := range e.names.Aliases() {
		e.section()
		e.buf.WriteString("/**\n * Unmapped database type `")
		e.buf.WriteString(strings.ReplaceAll(a.Raw, "*/", "*\\/"))
		e.buf.WriteString("`.\n */\nexport type ")
		e.buf.WriteString(a.Name)
		e.buf.WriteString(" = unknown;")
	}
}

func (e *emitter) enums() {
	for _, en := range e.m.Enums() {
		name := e.names.Enum(en.Name)
		e.section()

		if e.opts.RuntimeEnums {
			members := e.names.Members(en.Name)
			e.buf.WriteString("export enum " + name + " {")
			for i, l := range en.Labels {
				e.buf.WriteString("\n  " + Key(members[i]) + " = " + Quote(l) + ",")
			}
			e.buf.WriteString("\n}")
			continue
		}

		union := "never"
		if len(en.Labels) > 0 {
			quoted := make([]string, len(en.Labels))
			for i, l := range en.Labels {
				quoted[i] = Quote(l)
			}
			union = strings.Join(quoted, " | ")
		}
		e.buf.WriteString("export type " + name + " = " + union + ";")
	}
}

func (e *emitter) tables() {
	for _, t := range e.m.Tables() {
		e.section()
		e.buf.WriteString("export interface " + e.names.Table(t.Name) + " {")
		if len(t.Columns) == 0 {
			e.buf.WriteString("}")
			continue
		}
		for i, c := range t.Columns {
			e.buf.WriteString("\n  " + Key(e.names.Column(t.Name, i)) + ": " + e.column(c) + ";")
		}
		e.buf.WriteString("\n}")
	}
}

func (e *emitter) root() {
	e.section()
	e.buf.WriteString("export interface DB {")
	tables := e.m.Tables()
	if len(tables) == 0 {
		e.buf.WriteString("}\n")
		return
	}
	for _, t := range tables {
		e.buf.WriteString("\n  " + Key(e.names.RootKey(t.Name)) + ": " + e.names.Table(t.Name) + ";")
	}
	e.buf.WriteString("\n}\n")
}

// column renders a member type. Literal overrides are taken verbatim.
func (e *emitter) column(c schema.Column) string {
	if l, ok := c.Type.(schema.Literal); ok {
		return l.Expr
	}
	s := e.typeExpr(c.Type)
	if c.Nullable {
		s += " | null"
	}
	if c.HasDefault {
		s = "Generated<" + s + ">"
	}
	return s
}

func (e *emitter) typeExpr(t schema.ColumnType) string {
	switch v := t.(type) {
	case schema.Primitive:
		return primitive(v)
	case schema.EnumRef:
		return e.names.Enum(v.Enum)
	case schema.ArrayOf:
		elem := e.typeExpr(v.Elem)
		if strings.Contains(elem, " | ") {
			elem = "(" + elem + ")"
		}
		return elem + "[]"
	case schema.Unknown:
		return e.names.Unknown(v.Raw)
	case schema.Literal:
		return v.Expr
	}
	return "unknown"
}

func primitive(p schema.Primitive) string {
	switch p.Kind {
	case schema.KindBoolean:
		return "boolean"
	case schema.KindInteger:
		if p.Repr == schema.ReprString {
			return "Int8"
		}
		return "number"
	case schema.KindFloat:
		return "number"
	case schema.KindDecimal:
		switch p.Repr {
		case schema.ReprNative:
			return "number"
		case schema.ReprNumberOrString:
			return "number | string"
		}
		return "Numeric"
	case schema.KindDate:
		if p.Repr == schema.ReprString {
			return "string"
		}
		return "Timestamp"
	case schema.KindTimestamp, schema.KindTimestampTZ:
		return "Timestamp"
	case schema.KindJSON:
		return "Json"
	case schema.KindBinary:
		return "Buffer"
	}
	return "string"
}

// Quote renders s as a string literal that decodes back to exactly s.
func Quote(s string) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(s)
	return strings.TrimSuffix(buf.String(), "\n")
}

// Key renders a member name, quoting it when it is not a valid identifier.
func Key(name string) string {
	if naming.IsIdentifier(name) {
		return name
	}
	return Quote(name)
}
