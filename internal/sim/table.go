package sim

// Table owns a game's entities and hands out stable numeric handles.
// Iteration follows insertion order so targeting tie-breaks are
// deterministic.
type Table struct {
	ids      []EntityID
	entities map[EntityID]*Entity
	next     EntityID
}

func NewTable() *Table {
	return &Table{
		entities: make(map[EntityID]*Entity),
		next:     1,
	}
}

// Add assigns the entity a fresh handle and stores it.
func (t *Table) Add(e *Entity) EntityID {
	id := t.next
	t.next++
	e.ID = id
	t.ids = append(t.ids, id)
	t.entities[id] = e
	return id
}

// Get resolves a handle. A zero handle or a removed entity yields ok=false.
func (t *Table) Get(id EntityID) (*Entity, bool) {
	e, ok := t.entities[id]
	return e, ok
}

// GetAlive resolves a handle to a living entity.
func (t *Table) GetAlive(id EntityID) (*Entity, bool) {
	e, ok := t.entities[id]
	if !ok || !e.Alive {
		return nil, false
	}
	return e, true
}

func (t *Table) Len() int { return len(t.ids) }

// ForEach visits every entity in insertion order.
func (t *Table) ForEach(fn func(*Entity)) {
	for _, id := range t.ids {
		if e, ok := t.entities[id]; ok {
			fn(e)
		}
	}
}
