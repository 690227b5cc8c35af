package tap

import (
	"encoding/json"
	"fmt"
)

// response is the JSON form of a synchronous TAP query result:
// column metadata plus one array of cell values per row.
type response struct {
	Metadata []column            `json:"metadata"`
	Data     [][]json.RawMessage `json:"data"`
}

type column struct {
	Name     string `json:"name"`
	Datatype string `json:"datatype"`
}

// Row is one decoded row of the mosaic product query.
// TileID and FOV are always present; the product fields are only set
// when the query selected them (HasProduct).
type Row struct {
	TileID     int64
	FOV        []float64
	Filter     string
	Instrument string
	FileName   string
	FilePath   string
	HasProduct bool
}

// decodeRow converts one raw TAP row into a Row. Rows carry either the
// two geometry columns or the full six-column product shape.
func decodeRow(cells []json.RawMessage) (Row, error) {
	if len(cells) != 2 && len(cells) != 6 {
		return Row{}, fmt.Errorf("unexpected column count %d", len(cells))
	}

	var row Row

	var id json.Number
	if err := json.Unmarshal(cells[0], &id); err != nil {
		return Row{}, fmt.Errorf("tile_index: %w", err)
	}
	tileID, err := id.Int64()
	if err != nil {
		return Row{}, fmt.Errorf("tile_index: %w", err)
	}
	row.TileID = tileID

	if err := json.Unmarshal(cells[1], &row.FOV); err != nil {
		return Row{}, fmt.Errorf("fov: %w", err)
	}

	if len(cells) == 6 {
		row.HasProduct = true
		for i, dst := range []*string{&row.Filter, &row.Instrument, &row.FileName, &row.FilePath} {
			if err := json.Unmarshal(cells[2+i], dst); err != nil {
				return Row{}, fmt.Errorf("column %d: %w", 2+i, err)
			}
		}
	}

	return row, nil
}
