package parsing

import (
	"sync"

	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("cmparse.parsing")

// ParsingDomain is the registry of the grammars of one parsing session. It
// hands out rule ids and memoizes grammars by qualified name.
type ParsingDomain struct {
	mu         sync.Mutex
	grammars   map[string]*Grammar
	order      []*Grammar
	nextRuleID int
}

func NewParsingDomain() *ParsingDomain {
	return &ParsingDomain{grammars: make(map[string]*Grammar)}
}

// Grammar returns the registered grammar with the qualified name, or nil.
func (d *ParsingDomain) Grammar(name string) *Grammar {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.grammars[name]
}

// Grammars returns the registered grammars in registration order.
func (d *ParsingDomain) Grammars() []*Grammar {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]*Grammar(nil), d.order...)
}

// register adds g unless a grammar of the same name exists, in which case
// the existing one is returned.
func (d *ParsingDomain) register(g *Grammar) (*Grammar, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if existing, ok := d.grammars[g.FullName()]; ok {
		return existing, false
	}
	d.grammars[g.FullName()] = g
	d.order = append(d.order, g)
	log.Debugf("registered grammar %s", g.FullName())
	return g, true
}

// unregister drops g, which failed to build, so that a later Create of the
// same name reports the failure again.
func (d *ParsingDomain) unregister(g *Grammar) {
	d.mu.Lock()
	defer d.mu.Unlock()
	name := g.FullName()
	if d.grammars[name] != g {
		return
	}
	delete(d.grammars, name)
	for i, o := range d.order {
		if o == g {
			d.order = append(d.order[:i], d.order[i+1:]...)
			break
		}
	}
	log.Debugf("unregistered grammar %s", name)
}

// lookup finds a grammar by qualified name or, failing that, by a name
// unique among the registered grammars' short names.
func (d *ParsingDomain) lookup(name string) *Grammar {
	d.mu.Lock()
	defer d.mu.Unlock()
	if g, ok := d.grammars[name]; ok {
		return g
	}
	var found *Grammar
	for _, g := range d.order {
		if g.Name() == name {
			if found != nil {
				return nil
			}
			found = g
		}
	}
	return found
}

func (d *ParsingDomain) NextRuleID() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	id := d.nextRuleID
	d.nextRuleID++
	return id
}

// NumRules is the number of rule ids handed out so far.
func (d *ParsingDomain) NumRules() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.nextRuleID
}
