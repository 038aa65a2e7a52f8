package mcpserver

// SchemaFormatContract describes the canonical YAML schema document
// format that LLM consumers should follow when authoring category
// schemas.
const SchemaFormatContract = `# Othala Schema Document Contract

Every category schema document stored in Othala MUST follow this structure.

## Structure

` + "```" + `yaml
category: Novel              # category name; defaults to the file name stem
parent: Book                 # OPTIONAL - single parent category (no graphs)
properties:
  - name: genre              # REQUIRED - wiki-global property name
    type: Text               # OPTIONAL - Page|Text|Number|Boolean|Date|URL|Code
    required: false          # OPTIONAL - defaults to false (optional)
    multi: true              # OPTIONAL - list-valued property
subobjects:
  - name: edition            # named nested property group
    required: false
    properties:
      - name: publisher
        type: Page
      - name: year
        type: Number
` + "```" + `

## Rules

1. **One document per category.** The file is named ` + "`" + `<Category>.yaml` + "`" + ` and
   lives flat in the schema directory.
2. **Single inheritance only.** ` + "`" + `parent` + "`" + ` names at most one category; a
   category must never reappear in its own ancestor chain.
3. **Property names are wiki-global.** The same name always carries the
   same datatype everywhere in the system. Never redeclare a name with a
   different type.
4. **Omitted types fall back.** A property without ` + "`" + `type` + "`" + ` takes its
   registered global datatype, or Page when unregistered. Unknown type
   names also fall back to Page.
5. **Required is a one-way street.** A property optional here but
   required anywhere else in an inheritance chain or a composed selection
   resolves to required ("promoted to required" warning).
6. **Multi-value fields** round-trip through the ` + "`" + `;` + "`" + ` separator in
   generated templates and rendered pages.
7. **Declaration order matters.** Generated artifacts preserve it, with
   ancestor declarations placed before descendant ones.
`
