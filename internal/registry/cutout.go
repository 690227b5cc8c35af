package registry

import (
	"strconv"

	"github.com/skymaps/tilefinder/internal/domain"
)

// CutoutURL builds the cutout download URL for a product of this
// service. The field order and separators mirror the cutout_access_url
// values found in the archive's obscore table; downstream consumers
// parse this shape, so it must not change.
func (s *Service) CutoutURL(tileID int64, p domain.Product) string {
	return "https://eas" + s.Nickname +
		"." + archiveDomain + "/sas-cutout/cutout?filepath=" +
		p.FilePath +
		"/" +
		p.FileName +
		"&collection=" +
		p.Instrument +
		"&tileindex=" +
		strconv.FormatInt(tileID, 10)
}
