package parser

import "github.com/santhosh-tekuri/jsonschema/v5"

// Field formats are enforced by schema rather than ad hoc checks: HHmm times,
// ISO dates, non-empty event labels, everything except the label nullable.
const eventSchemaJSON = `{
	"type": "object",
	"required": ["data"],
	"properties": {
		"data": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["event"],
				"properties": {
					"event": {"type": "string", "minLength": 1},
					"date": {"type": ["string", "null"], "pattern": "^[0-9]{4}-[0-9]{2}-[0-9]{2}$"},
					"time": {"type": ["string", "null"], "pattern": "^[0-9]{4}$"},
					"timeFrame": {
						"type": ["object", "null"],
						"properties": {
							"start": {"type": ["string", "null"], "pattern": "^[0-9]{4}$"},
							"end": {"type": ["string", "null"], "pattern": "^[0-9]{4}$"}
						}
					},
					"hasHandwritten": {"type": "boolean"}
				}
			}
		}
	}
}`

var eventSchema = jsonschema.MustCompileString("sof-events.json", eventSchemaJSON)
