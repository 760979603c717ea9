// Package highlight keeps the hover state of the linked monthly bar charts
// consistent: hovering a month in one chart highlights it in all of them.
package highlight

import (
	"github.com/owidviz/covidscope/pkg/timebucket"
)

// Marks is the set of bars one chart currently draws, with their
// highlighted flags.
type Marks struct {
	name   string
	order  []timebucket.Month
	active map[timebucket.Month]bool
}

func NewMarks(name string, keys []timebucket.Month) *Marks {
	m := &Marks{name: name, active: make(map[timebucket.Month]bool, len(keys))}
	for _, k := range keys {
		if _, dup := m.active[k]; dup {
			continue
		}
		m.active[k] = false
		m.order = append(m.order, k)
	}
	return m
}

func (m *Marks) Name() string { return m.name }

// Set flips the flag for key. It reports false when the chart has no bar
// for key.
func (m *Marks) Set(key timebucket.Month, on bool) bool {
	if _, ok := m.active[key]; !ok {
		return false
	}
	m.active[key] = on
	return true
}

func (m *Marks) Active(key timebucket.Month) bool { return m.active[key] }

// ActiveKeys lists highlighted keys in bar order.
func (m *Marks) ActiveKeys() []timebucket.Month {
	var out []timebucket.Month
	for _, k := range m.order {
		if m.active[k] {
			out = append(out, k)
		}
	}
	return out
}

// Coordinator broadcasts highlight changes to every registered chart.
// It is not safe for concurrent use; the selection session owns it.
type Coordinator struct {
	order   []string
	views   map[string]*Marks
	current map[string]timebucket.Month
}

func New(views ...*Marks) *Coordinator {
	c := &Coordinator{
		views:   make(map[string]*Marks),
		current: make(map[string]timebucket.Month),
	}
	for _, v := range views {
		c.Replace(v)
	}
	return c
}

// Replace installs a chart's marks, typically after a re-aggregation, and
// re-applies the highlights currently held by any pointer.
func (c *Coordinator) Replace(m *Marks) {
	if _, ok := c.views[m.Name()]; !ok {
		c.order = append(c.order, m.Name())
	}
	c.views[m.Name()] = m
	for _, key := range c.current {
		m.Set(key, true)
	}
}

// Remove drops a chart, e.g. while its data is loading.
func (c *Coordinator) Remove(name string) {
	if _, ok := c.views[name]; !ok {
		return
	}
	delete(c.views, name)
	for i, n := range c.order {
		if n == name {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}

func (c *Coordinator) Marks(name string) (*Marks, bool) {
	m, ok := c.views[name]
	return m, ok
}

// Highlight turns key on or off for pointer across every chart and returns
// the names of the charts that hold a bar for key. A pointer highlights at
// most one key; activating a new one releases the previous one.
func (c *Coordinator) Highlight(pointer string, key timebucket.Month, active bool) []string {
	prev, had := c.current[pointer]
	if active {
		if had && prev != key {
			c.current[pointer] = key
			c.broadcast(prev, c.held(prev))
		}
		c.current[pointer] = key
		return c.broadcast(key, true)
	}
	if had && prev == key {
		delete(c.current, pointer)
	}
	return c.broadcast(key, c.held(key))
}

// Current returns the key pointer is highlighting.
func (c *Coordinator) Current(pointer string) (timebucket.Month, bool) {
	k, ok := c.current[pointer]
	return k, ok
}

// held reports whether some pointer still highlights key.
func (c *Coordinator) held(key timebucket.Month) bool {
	for _, k := range c.current {
		if k == key {
			return true
		}
	}
	return false
}

func (c *Coordinator) broadcast(key timebucket.Month, on bool) []string {
	var touched []string
	for _, name := range c.order {
		if c.views[name].Set(key, on) {
			touched = append(touched, name)
		}
	}
	return touched
}
