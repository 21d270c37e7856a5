package physics

// resolvePairs separates and bounces every overlapping pair. Expanded
// entities are immovable: their partner takes the whole correction.
func (m *Manager) resolvePairs() {
	for i := 0; i < len(m.entities); i++ {
		for j := i + 1; j < len(m.entities); j++ {
			m.resolvePair(m.entities[i], m.entities[j])
		}
	}
}

func (m *Manager) resolvePair(a, b *Entity) {
	if a.Expanded && b.Expanded {
		return
	}

	off := b.Position.Sub(a.Position)
	d := off.Len()
	sum := a.Radius + b.Radius
	if d >= sum {
		return
	}

	n := off.Normalize()
	if n.IsZero() {
		n = m.randomDirection()
	}

	p := m.params
	shift := (sum-d)/2 + p.SeparationPadding
	switch {
	case a.Expanded:
		b.Position = b.Position.Add(n.Scale(2 * shift))
	case b.Expanded:
		a.Position = a.Position.Sub(n.Scale(2 * shift))
	default:
		a.Position = a.Position.Sub(n.Scale(shift))
		b.Position = b.Position.Add(n.Scale(shift))
	}

	rel := b.Velocity.Sub(a.Velocity).Dot(n)
	if rel > 0 {
		return
	}

	switch {
	case a.Expanded:
		b.Velocity = b.Velocity.Add(n.Scale(-(1+p.Restitution)*rel + p.MinSeparationSpeed))
	case b.Expanded:
		a.Velocity = a.Velocity.Sub(n.Scale(-(1+p.Restitution)*rel + p.MinSeparationSpeed))
	default:
		j := -(1 + p.Restitution) * rel / 2
		a.Velocity = a.Velocity.Sub(n.Scale(j + p.MinSeparationSpeed))
		b.Velocity = b.Velocity.Add(n.Scale(j + p.MinSeparationSpeed))
	}
}

// Overlaps counts the entity pairs that currently intersect.
func (m *Manager) Overlaps() int {
	n := 0
	for i := 0; i < len(m.entities); i++ {
		for j := i + 1; j < len(m.entities); j++ {
			a, b := m.entities[i], m.entities[j]
			if a.Position.Dist(b.Position) < a.Radius+b.Radius {
				n++
			}
		}
	}
	return n
}
