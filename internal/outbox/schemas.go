package outbox

const workoutLoggedSchema = `{
  "type": "object",
  "title": "WorkoutLogged",
  "properties": {
    "workout_id": {"type": "string"},
    "user_id": {"type": "string"},
    "title": {"type": "string"},
    "duration_min": {"type": "integer"},
    "logged_at": {"type": "string", "format": "date-time"}
  },
  "required": ["workout_id", "user_id", "title", "duration_min", "logged_at"],
  "additionalProperties": false
}`

const foodLoggedSchema = `{
  "type": "object",
  "title": "FoodLogged",
  "properties": {
    "log_id": {"type": "string"},
    "user_id": {"type": "string"},
    "food_name": {"type": "string"},
    "meal_type": {"type": "string"},
    "calories": {"type": "integer"},
    "logged_at": {"type": "string", "format": "date-time"}
  },
  "required": ["log_id", "user_id", "food_name", "meal_type", "logged_at"],
  "additionalProperties": false
}`

const habitLoggedSchema = `{
  "type": "object",
  "title": "HabitLogged",
  "properties": {
    "habit_id": {"type": "string"},
    "user_id": {"type": "string"},
    "habit_name": {"type": "string"},
    "day": {"type": "string"},
    "value": {"type": "number"},
    "completed": {"type": "boolean"},
    "logged_at": {"type": "string", "format": "date-time"}
  },
  "required": ["habit_id", "user_id", "habit_name", "day", "value", "completed", "logged_at"],
  "additionalProperties": false
}`

const recordImprovedSchema = `{
  "type": "object",
  "title": "RecordImproved",
  "properties": {
    "record_id": {"type": "string"},
    "user_id": {"type": "string"},
    "exercise_name": {"type": "string"},
    "previous_value": {"type": "number"},
    "new_value": {"type": "number"},
    "improvement_percent": {"type": "number"},
    "achieved_at": {"type": "string", "format": "date-time"}
  },
  "required": ["record_id", "user_id", "exercise_name", "previous_value", "new_value", "improvement_percent", "achieved_at"],
  "additionalProperties": false
}`

// SchemaCatalogEntry maps event type to schema definition.
type SchemaCatalogEntry struct {
	Schema string
}

var schemaCatalog = map[string]SchemaCatalogEntry{
	"workout.logged":  {Schema: workoutLoggedSchema},
	"food.logged":     {Schema: foodLoggedSchema},
	"habit.logged":    {Schema: habitLoggedSchema},
	"record.improved": {Schema: recordImprovedSchema},
}
