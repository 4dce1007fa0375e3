package gallery

// Lightbox is the position of the open photo. Transitions take the image count of every
// project and wrap at both ends of the image list and the project list. A project with
// no images counts as one slot.
type Lightbox struct {
	ProjectIndex int
	ImageIndex   int
}

func slots(counts []int, project int) int {
	if counts[project] < 1 {
		return 1
	}
	return counts[project]
}

func (l Lightbox) normalize(counts []int) Lightbox {
	if len(counts) == 0 {
		return Lightbox{}
	}
	l.ProjectIndex = mod(l.ProjectIndex, len(counts))
	l.ImageIndex = mod(l.ImageIndex, slots(counts, l.ProjectIndex))
	return l
}

// Next moves to the next photo, continuing with the next project's first photo.
func (l Lightbox) Next(counts []int) Lightbox {
	if len(counts) == 0 {
		return Lightbox{}
	}
	l = l.normalize(counts)
	if l.ImageIndex+1 < slots(counts, l.ProjectIndex) {
		l.ImageIndex++
		return l
	}
	return Lightbox{ProjectIndex: mod(l.ProjectIndex+1, len(counts))}
}

// Prev moves to the previous photo, continuing with the previous project's last photo.
func (l Lightbox) Prev(counts []int) Lightbox {
	if len(counts) == 0 {
		return Lightbox{}
	}
	l = l.normalize(counts)
	if l.ImageIndex > 0 {
		l.ImageIndex--
		return l
	}
	project := mod(l.ProjectIndex-1, len(counts))
	return Lightbox{ProjectIndex: project, ImageIndex: slots(counts, project) - 1}
}

// NextProject jumps to the first photo of the next project.
func (l Lightbox) NextProject(counts []int) Lightbox {
	if len(counts) == 0 {
		return Lightbox{}
	}
	l = l.normalize(counts)
	return Lightbox{ProjectIndex: mod(l.ProjectIndex+1, len(counts))}
}

// PrevProject jumps to the first photo of the previous project.
func (l Lightbox) PrevProject(counts []int) Lightbox {
	if len(counts) == 0 {
		return Lightbox{}
	}
	l = l.normalize(counts)
	return Lightbox{ProjectIndex: mod(l.ProjectIndex-1, len(counts))}
}

func mod(a, n int) int {
	return ((a % n) + n) % n
}
