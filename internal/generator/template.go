package generator

import (
	"fmt"
	"strings"

	"github.com/starford/othala/internal/models"
)

// MultiValueSeparator is the explicit marker between values of a
// multi-value property, both in emitted templates and in rendered
// pages. List-valued data round-trips without positional parsing.
const MultiValueSeparator = ";"

// templateBody emits the entity template for one generation unit as
// wikitext. Every field is wrapped so that an absent value produces no
// output at all: single values through a conditional, multi-values
// through a separator-aware map over the list.
func templateBody(u models.GenerationUnit) string {
	var b strings.Builder

	b.WriteString("<includeonly>{| class=\"wikitable\"\n")
	for _, p := range u.Properties {
		b.WriteString("! " + p.Name + "\n")
		b.WriteString("| " + propertyCell(p) + "\n")
	}
	b.WriteString("|}\n")

	for _, sub := range u.Subobjects {
		b.WriteString(subobjectBlock(sub))
	}

	b.WriteString(fmt.Sprintf("[[Category:%s]]</includeonly>\n", u.Category))
	return b.String()
}

// propertyCell renders one guarded annotation cell.
func propertyCell(p models.PropertyDefinition) string {
	param := fmt.Sprintf("{{{%s|}}}", p.Name)
	if p.Multi {
		return fmt.Sprintf("{{#if:%s|{{#arraymap:%s|%s|x|[[%s::x]]}}|}}", param, param, MultiValueSeparator, p.Name)
	}
	return fmt.Sprintf("{{#if:%s|[[%s::%s]]|}}", param, p.Name, param)
}

// subobjectBlock renders a guarded subobject declaration. The whole
// block is emitted only when at least one nested value is present.
func subobjectBlock(sub models.SubobjectDefinition) string {
	var guard, body strings.Builder
	for _, p := range sub.Properties {
		param := fmt.Sprintf("{{{%s|}}}", SubobjectParam(sub.Name, p.Name))
		guard.WriteString(param)
		body.WriteString(fmt.Sprintf("\n|%s=%s", p.Name, param))
	}
	return fmt.Sprintf("{{#if:%s|{{#subobject:%s%s\n}}|}}\n", guard.String(), sub.Name, body.String())
}

// SubobjectParam is the template parameter name carrying a nested
// property value.
func SubobjectParam(sub, prop string) string {
	return sub + "_" + prop
}
