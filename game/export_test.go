package game

// Test-only accessors for round internals.

func (r *Room) DrawerIndex() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.drawerIdx
}

func (r *Room) setWordForTest(word string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.currentWord = word
}

func (r *Room) CurrentWord() string {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.currentWord
}

func (d *Directory) RoomCount() int {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return len(d.rooms)
}
