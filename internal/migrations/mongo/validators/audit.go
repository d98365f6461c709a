package validators

import "go.mongodb.org/mongo-driver/bson"

var AuditValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"event_type",
			"booking_id",
			"resource_id",
			"recorded_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "string",
			},

			"event_type": bson.M{
				"bsonType": "string",
				"enum": []string{
					"booking.created",
					"booking.updated",
					"booking.cancelled",
				},
			},

			"booking_id": bson.M{
				"bsonType": "long",
			},

			"resource_id": bson.M{
				"bsonType": "string",
			},

			"recorded_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
