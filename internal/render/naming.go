package render

import (
	"strconv"
	"strings"

	"KeplerLens/internal/model"
)

// Fill expands the placeholders of a title or file-name template:
// {id} catalog ID, {kic} zero-padded catalog ID, {name} display name,
// {clean} alphanumeric name, {q} quarter. A placeholder that expands to
// nothing also takes one adjacent underscore with it.
func Fill(template string, star model.StarIdentifier, quarter int) string {
	q := ""
	if quarter != model.AllQuarters {
		q = strconv.Itoa(quarter)
	}
	values := [][2]string{
		{"{id}", strconv.FormatInt(star.CatalogID, 10)},
		{"{kic}", star.KIC()},
		{"{name}", star.DisplayName()},
		{"{clean}", star.CleanName()},
		{"{q}", q},
	}

	var pairs []string
	for _, v := range values {
		if v[1] == "" {
			pairs = append(pairs, "_"+v[0], "", v[0]+"_", "")
		}
		pairs = append(pairs, v[0], v[1])
	}
	return strings.NewReplacer(pairs...).Replace(template)
}
