package packages

import "github.com/caffeineduck/termite/term"

// List returns name => version for every module.
func (c *Catalog) List() *term.Mapping {
	m := term.NewMapping()
	for _, name := range c.Names() {
		mod, _ := c.Lookup(name)
		m.Put(term.Bytes(name), term.Bytes(mod.Version))
	}
	return m
}

// Check returns %{"available" => bool, "version" => version | nil}.
func (c *Catalog) Check(name string) *term.Mapping {
	mod, ok := c.Lookup(name)
	var version term.Term = term.Nil{}
	if ok {
		version = term.Bytes(mod.Version)
	}
	return term.NewMapping(
		term.Pair{Key: term.Bytes("available"), Value: term.Bool(ok)},
		term.Pair{Key: term.Bytes("version"), Value: version},
	)
}

// Import attempts to load name and returns
// %{"success" => bool, "error" => message | nil}.
func (c *Catalog) Import(name string) *term.Mapping {
	var detail term.Term = term.Nil{}
	err := c.TryImport(name)
	if err != nil {
		detail = term.Bytes(err.Error())
	}
	return term.NewMapping(
		term.Pair{Key: term.Bytes("success"), Value: term.Bool(err == nil)},
		term.Pair{Key: term.Bytes("error"), Value: detail},
	)
}
