// Platewise - Restaurant Discovery and Personalized Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/platewise

package eventprocessor

import (
	"github.com/tomtom215/platewise/internal/models"
)

// Topics.
const (
	TopicCatalog     = "platewise.catalog"
	TopicPreferences = "platewise.preferences"
)

// Topics lists every topic the bus carries.
var Topics = []string{TopicCatalog, TopicPreferences}

// TopicFor returns the topic an event kind is published on.
func TopicFor(kind models.ChangeKind) string {
	if kind == models.ChangePreferences {
		return TopicPreferences
	}
	return TopicCatalog
}
