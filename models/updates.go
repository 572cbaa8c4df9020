package models

// The update types below list every field a client may change. Anything else
// in an update payload (email, role, image, file, artist or album references)
// has no field to decode into and is dropped.

type UserUpdate struct {
	Name    *string `json:"name"`
	Surname *string `json:"surname"`
}

type ArtistUpdate struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

type AlbumUpdate struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Year        *int    `json:"year"`
}

type SongUpdate struct {
	Number   *int    `json:"number"`
	Name     *string `json:"name"`
	Duration *string `json:"duration"`
}

// Columns returns the column/value pairs present in the update.
func (u UserUpdate) Columns() map[string]any {
	cols := map[string]any{}
	setString(cols, "name", u.Name)
	setString(cols, "surname", u.Surname)
	return cols
}

func (u ArtistUpdate) Columns() map[string]any {
	cols := map[string]any{}
	setString(cols, "name", u.Name)
	setString(cols, "description", u.Description)
	return cols
}

func (u AlbumUpdate) Columns() map[string]any {
	cols := map[string]any{}
	setString(cols, "title", u.Title)
	setString(cols, "description", u.Description)
	if u.Year != nil {
		cols["year"] = *u.Year
	}
	return cols
}

func (u SongUpdate) Columns() map[string]any {
	cols := map[string]any{}
	if u.Number != nil {
		cols["number"] = *u.Number
	}
	setString(cols, "name", u.Name)
	setString(cols, "duration", u.Duration)
	return cols
}

func setString(cols map[string]any, column string, value *string) {
	if value != nil {
		cols[column] = *value
	}
}
