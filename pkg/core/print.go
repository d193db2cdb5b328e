package core

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

func connector(indent int, last bool) string {
	var sb strings.Builder
	sb.WriteString(strings.Repeat("  ", indent))
	if last {
		sb.WriteString("└─")
	} else {
		sb.WriteString("├─")
	}
	return sb.String()
}

// PrintShadow writes an indented outline of t, one node per line with its
// tag, id, and key. The tree is not modified.
func PrintShadow(w io.Writer, t *ShadowTree) error {
	bw := bufio.NewWriter(w)
	type entry struct {
		i      int
		indent int
		last   bool
	}
	stack := []entry{{t.Root(), 0, true}}
	for len(stack) > 0 {
		e := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		n := t.Node(e.i)

		kind := "component"
		if n.IsElement {
			kind = "element"
		}
		fmt.Fprintf(bw, "%s %s #%d", connector(e.indent, e.last), n.Tag, n.ID)
		if e.i != t.Root() {
			fmt.Fprintf(bw, " %s", kind)
		}
		if n.Key != "" {
			fmt.Fprintf(bw, " key=%q", n.Key)
		}
		bw.WriteByte('\n')

		for c := len(n.Children) - 1; c >= 0; c-- {
			stack = append(stack, entry{n.Children[c], e.indent + 1, c == len(n.Children)-1})
		}
	}
	return bw.Flush()
}

// PrintElements writes an indented outline of the element tree rooted at
// root, one element per line with its name, id, user id, and geometry.
func PrintElements(w io.Writer, root Element) error {
	bw := bufio.NewWriter(w)
	type entry struct {
		el     Element
		indent int
		last   bool
	}
	stack := []entry{{root, 0, true}}
	for len(stack) > 0 {
		e := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		d := e.el.Data()

		fmt.Fprintf(bw, "%s %s #%d", connector(e.indent, e.last), e.el.Name(), d.ComponentID)
		if d.UserID != "" {
			fmt.Fprintf(bw, " id=%q", d.UserID)
		}
		fmt.Fprintf(bw, " (%g,%g %gx%g)\n", d.X, d.Y, d.Width, d.Height)

		for c := len(d.Children) - 1; c >= 0; c-- {
			stack = append(stack, entry{d.Children[c], e.indent + 1, c == len(d.Children)-1})
		}
	}
	return bw.Flush()
}
