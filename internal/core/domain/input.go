package domain

// InputTag names a question the host UI was asked and is now answering.
type InputTag string

const (
	TagAddNewPlace    InputTag = "add_new_place"
	TagSelectAddress  InputTag = "select_address"
	TagInsertPosition InputTag = "insert_position"
	TagDeletePlace    InputTag = "delete_place"
	TagSortPlaces     InputTag = "sort_places"
	TagSavePlaces     InputTag = "save_places"
	TagLoadPlaces     InputTag = "load_places"
)

// InputKind tells the host UI how to collect the answer.
type InputKind string

const (
	InputString InputKind = "string"
	InputList   InputKind = "list"
)

// InputRequest asks the host UI for a value. The answer comes back through the
// controller tagged with Tag.
type InputRequest struct {
	Tag     InputTag  `json:"tag"`
	Prompt  string    `json:"prompt"`
	Kind    InputKind `json:"kind"`
	Options []string  `json:"options,omitempty"`
}
