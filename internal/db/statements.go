package db

// Named prepared statements. The names are part of the persistence contract:
// repositories execute them by name, prepareStatements installs them on
// every pooled connection.
const (
	stmtGetUserSession = "get_user_session"

	stmtGetCharacter           = "get_character"
	stmtGetCharacterAttributes = "get_character_attributes"
	stmtGetCharacterSkills     = "get_character_skills"
	stmtGetCharacterPosition   = "get_character_position"

	stmtUpdateCharacter         = "update_character"
	stmtUpdateCharacterPosition = "update_character_position"
	stmtInsertCharacterAttr     = "insert_character_attribute"

	stmtGetItems        = "get_items"
	stmtGetNpcs         = "get_npcs"
	stmtGetMobTemplates = "get_mob_templates"
	stmtGetLoot         = "get_loot"
	stmtGetSpawnZones   = "get_spawn_zones"
)

var statements = map[string]string{
	stmtGetUserSession: `
		SELECT session_key FROM users WHERE id = $1`,

	stmtGetCharacter: `
		SELECT id, owner_id, name, class, race, level, exp,
		       current_hp, current_mp, max_hp, max_mp
		FROM characters
		WHERE id = $1`,

	stmtGetCharacterAttributes: `
		SELECT name, value FROM character_attributes WHERE character_id = $1`,

	stmtGetCharacterSkills: `
		SELECT skill_id, level, name FROM character_skills
		WHERE character_id = $1
		ORDER BY skill_id`,

	stmtGetCharacterPosition: `
		SELECT x, y, z, rot_z FROM character_positions WHERE character_id = $1`,

	stmtUpdateCharacter: `
		UPDATE characters
		SET level = $2, exp = $3, current_hp = $4, current_mp = $5,
		    max_hp = $6, max_mp = $7
		WHERE id = $1`,

	stmtUpdateCharacterPosition: `
		INSERT INTO character_positions (character_id, x, y, z, rot_z)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (character_id)
		DO UPDATE SET x = EXCLUDED.x, y = EXCLUDED.y, z = EXCLUDED.z,
		              rot_z = EXCLUDED.rot_z`,

	stmtInsertCharacterAttr: `
		INSERT INTO character_attributes (character_id, name, value)
		VALUES ($1, $2, $3)
		ON CONFLICT (character_id, name)
		DO UPDATE SET value = EXCLUDED.value`,

	stmtGetItems: `
		SELECT id, name, type, grade, weight, price FROM items ORDER BY id`,

	stmtGetNpcs: `
		SELECT id, name, title, type, level, x, y, z, rot_z
		FROM npcs
		ORDER BY id`,

	stmtGetMobTemplates: `
		SELECT id, name, level, race, hp, mp, aggressive, attributes
		FROM mob_templates
		ORDER BY id`,

	stmtGetLoot: `
		SELECT id, mob_template_id, item_id, chance, min_count, max_count
		FROM loot
		ORDER BY id`,

	stmtGetSpawnZones: `
		SELECT zone_id, name,
		       center_x, center_y, center_z,
		       size_x, size_y, size_z,
		       mob_template_id, spawn_count, respawn_time_sec
		FROM spawn_zones
		ORDER BY zone_id`,
}
