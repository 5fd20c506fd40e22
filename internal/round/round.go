// Package round implements the binary-assignment interaction for a single
// poll view: two words, two buckets (IS and IT), and the rule that placing
// one word fully resolves the other.
package round

// Bucket is one of the two fixed target categories.
type Bucket string

const (
	IS Bucket = "IS"
	IT Bucket = "IT"
)

// Other returns the complementary bucket.
func (b Bucket) Other() Bucket {
	if b == IS {
		return IT
	}
	return IS
}

// Valid reports whether b is one of the two known buckets.
func (b Bucket) Valid() bool {
	return b == IS || b == IT
}

// Key identifies one of the two words within a round.
type Key string

const (
	Left  Key = "left"
	Right Key = "right"
)

// Other returns the key of the counterpart word.
func (k Key) Other() Key {
	if k == Left {
		return Right
	}
	return Left
}

// Valid reports whether k is one of the two known keys.
func (k Key) Valid() bool {
	return k == Left || k == Right
}

// Assignment is the resolved outcome of a round: both words mapped to
// distinct buckets, plus which bucket the moved word landed in.
type Assignment struct {
	IS     string // word assigned to the IS bucket
	IT     string // word assigned to the IT bucket
	Chosen Bucket // bucket the gesture's word received
}

// Round holds the state of one binary-assignment interaction. The two
// presentation flips are decided once at construction and never change,
// so the layout stays stable for the life of the round.
//
// A Round is not safe for concurrent use; every round belongs to exactly
// one viewing user.
type Round struct {
	words      map[Key]string
	wordFlip   bool
	symbolFlip bool

	selected Key // pending click-mode selection, "" when none
	dragging Key // word picked up by an in-flight drag, "" when none

	resolved   bool
	assignment Assignment
	slots      map[Key]int // visual column per word after placement
}

// New creates a round for the given pair of words. wordFlip mirrors the
// left/right word order, symbolFlip mirrors the bucket icon order.
func New(leftWord, rightWord string, wordFlip, symbolFlip bool) *Round {
	return &Round{
		words:      map[Key]string{Left: leftWord, Right: rightWord},
		wordFlip:   wordFlip,
		symbolFlip: symbolFlip,
		slots:      make(map[Key]int),
	}
}

// Word returns the display word for k.
func (r *Round) Word(k Key) string { return r.words[k] }

// WordSlots returns the two word keys in presentation order.
func (r *Round) WordSlots() [2]Key {
	if r.wordFlip {
		return [2]Key{Right, Left}
	}
	return [2]Key{Left, Right}
}

// BucketSlots returns the two buckets in presentation order.
func (r *Round) BucketSlots() [2]Bucket {
	if r.symbolFlip {
		return [2]Bucket{IT, IS}
	}
	return [2]Bucket{IS, IT}
}

// Select toggles click-mode selection for k. Selecting the already-selected
// word clears the selection; selecting the other word replaces it. Gestures
// after resolution are ignored.
func (r *Round) Select(k Key) {
	if r.resolved || !k.Valid() {
		return
	}
	if r.selected == k {
		r.selected = ""
		return
	}
	r.selected = k
}

// Selected returns the word pending placement, if any.
func (r *Round) Selected() (Key, bool) {
	return r.selected, r.selected != ""
}

// BeginDrag marks k as picked up by a drag gesture.
func (r *Round) BeginDrag(k Key) {
	if r.resolved || !k.Valid() {
		return
	}
	r.dragging = k
}

// CancelDrag ends a drag that did not land on a bucket. Selection and
// assignment state are unchanged.
func (r *Round) CancelDrag() {
	r.dragging = ""
}

// DropOn completes a drag over a bucket's drop target. Without a drag in
// flight it is a no-op.
func (r *Round) DropOn(b Bucket, slot int) (Assignment, bool) {
	if r.dragging == "" {
		return Assignment{}, false
	}
	k := r.dragging
	r.dragging = ""
	return r.Place(k, b, slot)
}

// ClickBucket completes a click-mode placement: the currently selected word
// goes to b. Without a selection it is a no-op.
func (r *Round) ClickBucket(b Bucket, slot int) (Assignment, bool) {
	if r.selected == "" {
		return Assignment{}, false
	}
	return r.Place(r.selected, b, slot)
}

// Place is the gesture-agnostic resolution step: word k goes to bucket b,
// its counterpart automatically receives the remaining bucket, and both
// mappings are set atomically. slot (0 or 1) records the visual column the
// target bucket occupies so the placed word stays aligned with where it was
// dropped. Returns false if the inputs are unknown or the round is already
// resolved.
func (r *Round) Place(k Key, b Bucket, slot int) (Assignment, bool) {
	if r.resolved || !k.Valid() || !b.Valid() || slot < 0 || slot > 1 {
		return Assignment{}, false
	}

	chosen, other := r.words[k], r.words[k.Other()]
	a := Assignment{Chosen: b}
	if b == IS {
		a.IS, a.IT = chosen, other
	} else {
		a.IS, a.IT = other, chosen
	}

	r.assignment = a
	r.resolved = true
	r.selected = ""
	r.dragging = ""
	r.slots[k] = slot
	r.slots[k.Other()] = slot ^ 1
	return a, true
}

// Resolved returns the finalized assignment once a placement has occurred.
func (r *Round) Resolved() (Assignment, bool) {
	return r.assignment, r.resolved
}

// Slot returns the visual column k settled in after placement.
func (r *Round) Slot(k Key) (int, bool) {
	if !r.resolved {
		return 0, false
	}
	return r.slots[k], true
}

// Reset clears assignment, selection, and any in-flight drag, returning the
// round to its initial state. The presentation flips are kept.
func (r *Round) Reset() {
	r.selected = ""
	r.dragging = ""
	r.resolved = false
	r.assignment = Assignment{}
	r.slots = make(map[Key]int)
}
