package pysource

import (
	"fmt"
	"os"
	"strings"
)

// Class is a class statement at module level.
type Class struct {
	Name    string
	Bases   []string // Base expressions as written, e.g. "DParentTest" or "harness.Base"
	Methods []string // Functions defined directly in the class body
	Line    int
}

// HasMethod reports whether the class body defines name.
func (c Class) HasMethod(name string) bool {
	for _, m := range c.Methods {
		if m == name {
			return true
		}
	}
	return false
}

// Module summarizes what a Python source file defines and imports at
// module level. It is built from the source text alone; nothing is executed.
type Module struct {
	Classes []Class
	Imports []string // Names bound by import statements
}

// Class returns the module-level class called name.
func (m *Module) Class(name string) (Class, bool) {
	for _, c := range m.Classes {
		if c.Name == name {
			return c, true
		}
	}
	return Class{}, false
}

// Imported reports whether name is bound by a module-level import.
func (m *Module) Imported(name string) bool {
	for _, imp := range m.Imports {
		if imp == name {
			return true
		}
	}
	return false
}

// ClassNames returns the names of the module-level classes in file order.
func (m *Module) ClassNames() []string {
	names := make([]string, len(m.Classes))
	for i, c := range m.Classes {
		names[i] = c.Name
	}
	return names
}

// ParseFile reads and parses a Python source file.
func ParseFile(path string) (*Module, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading file %s: %w", path, err)
	}
	return Parse(path, src)
}

// block is an open class or def statement.
type block struct {
	isClass bool
	class   int // Index into Module.Classes, -1 unless a module-level class
	column  int
	body    int // Column of the first statement in the body, 0 until seen
}

// Parse builds the module summary of src.
func Parse(filename string, src []byte) (*Module, error) {
	tokens, err := Tokenize(filename, src)
	if err != nil {
		return nil, err
	}

	mod := &Module{}
	var stack []block

	for _, line := range logicalLines(tokens) {
		first := line[0]
		column := first.Column

		for len(stack) > 0 && stack[len(stack)-1].column >= column {
			stack = stack[:len(stack)-1]
		}
		if len(stack) > 0 && stack[len(stack)-1].body == 0 {
			stack[len(stack)-1].body = column
		}

		if first.Kind != KindName {
			continue
		}
		if first.Value == "async" && len(line) > 1 && line[1].Value == "def" {
			line = line[1:]
			first = line[0]
		}

		switch first.Value {
		case "class":
			if len(line) < 2 || line[1].Kind != KindName {
				continue
			}
			b := block{isClass: true, class: -1, column: column}
			if len(stack) == 0 && column == 1 {
				mod.Classes = append(mod.Classes, Class{
					Name:  line[1].Value,
					Bases: parseBases(line[2:]),
					Line:  first.Line,
				})
				b.class = len(mod.Classes) - 1
			}
			stack = append(stack, b)

		case "def":
			if len(line) < 2 || line[1].Kind != KindName {
				continue
			}
			if len(stack) > 0 {
				top := stack[len(stack)-1]
				if top.isClass && top.class >= 0 && top.body == column {
					c := &mod.Classes[top.class]
					c.Methods = append(c.Methods, line[1].Value)
				}
			}
			stack = append(stack, block{class: -1, column: column})

		case "import", "from":
			if len(stack) == 0 {
				mod.Imports = append(mod.Imports, importedNames(line)...)
			}
		}
	}
	return mod, nil
}

// logicalLines groups tokens into logical lines, dropping comments. Newlines
// inside brackets do not end a line.
func logicalLines(tokens []Token) [][]Token {
	var lines [][]Token
	var current []Token
	depth := 0

	for _, t := range tokens {
		switch t.Kind {
		case KindComment:
			continue
		case KindNewline:
			if depth == 0 {
				if len(current) > 0 {
					lines = append(lines, current)
				}
				current = nil
			}
			continue
		case KindPunct:
			switch t.Value {
			case "(", "[", "{":
				depth++
			case ")", "]", "}":
				if depth > 0 {
					depth--
				}
			}
		}
		current = append(current, t)
	}
	if len(current) > 0 {
		lines = append(lines, current)
	}
	return lines
}

// parseBases reads the parenthesized base list that follows a class name.
// Keyword arguments such as metaclass=ABCMeta are skipped.
func parseBases(tokens []Token) []string {
	if len(tokens) == 0 || tokens[0].Value != "(" {
		return nil
	}

	var bases []string
	var current strings.Builder
	keyword := false
	depth := 0

	flush := func() {
		if current.Len() > 0 && !keyword {
			bases = append(bases, current.String())
		}
		current.Reset()
		keyword = false
	}

	for _, t := range tokens[1:] {
		if t.Kind == KindPunct {
			switch t.Value {
			case "(", "[", "{":
				depth++
			case ")", "]", "}":
				if depth == 0 {
					flush()
					return bases
				}
				depth--
			case ",":
				if depth == 0 {
					flush()
					continue
				}
			case "=":
				if depth == 0 {
					keyword = true
				}
			case "*":
				if depth == 0 {
					keyword = true
				}
			}
		}
		current.WriteString(t.Value)
	}
	flush()
	return bases
}

// importedNames returns the names an import statement binds.
//
//	import a.b, c as d     -> a, d
//	from x import (y, z as w) -> y, w
func importedNames(line []Token) []string {
	var names []string

	if line[0].Value == "import" {
		for _, part := range splitTopLevel(line[1:]) {
			if alias, ok := aliasOf(part); ok {
				names = append(names, alias)
			} else if len(part) > 0 && part[0].Kind == KindName {
				names = append(names, part[0].Value)
			}
		}
		return names
	}

	for i, t := range line {
		if t.Kind != KindName || t.Value != "import" {
			continue
		}
		for _, part := range splitTopLevel(line[i+1:]) {
			if alias, ok := aliasOf(part); ok {
				names = append(names, alias)
			} else if len(part) == 1 && part[0].Kind == KindName {
				names = append(names, part[0].Value)
			}
		}
		break
	}
	return names
}

// splitTopLevel splits tokens on commas, ignoring brackets.
func splitTopLevel(tokens []Token) [][]Token {
	var parts [][]Token
	var current []Token
	for _, t := range tokens {
		if t.Kind == KindPunct {
			switch t.Value {
			case "(", ")":
				continue
			case ",":
				parts = append(parts, current)
				current = nil
				continue
			}
		}
		current = append(current, t)
	}
	if len(current) > 0 {
		parts = append(parts, current)
	}
	return parts
}

func aliasOf(part []Token) (string, bool) {
	n := len(part)
	if n >= 3 && part[n-2].Value == "as" && part[n-1].Kind == KindName {
		return part[n-1].Value, true
	}
	return "", false
}
