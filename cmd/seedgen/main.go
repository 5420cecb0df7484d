// Seed generator: reads the YAML reference data under data/ and emits a
// goose seed migration with development fixtures.
//
// Usage:
//
//	go run ./cmd/seedgen                       # writes the default output
//	go run ./cmd/seedgen -data data -out internal/db/migrations/00004_seed_dev_data.sql
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

func main() {
	dataDir := flag.String("data", "data", "directory with the YAML reference files")
	out := flag.String("out", "internal/db/migrations/00004_seed_dev_data.sql", "output migration path")
	flag.Parse()

	if err := generate(*dataDir, *out); err != nil {
		fmt.Fprintln(os.Stderr, "seedgen:", err)
		os.Exit(1)
	}
}

type position struct {
	X    float32 `yaml:"x"`
	Y    float32 `yaml:"y"`
	Z    float32 `yaml:"z"`
	RotZ float32 `yaml:"rot_z"`
}

type mobTemplateFile struct {
	MobTemplates []struct {
		ID         int32            `yaml:"id"`
		Name       string           `yaml:"name"`
		Level      int32            `yaml:"level"`
		Race       string           `yaml:"race"`
		HP         int32            `yaml:"hp"`
		MP         int32            `yaml:"mp"`
		Aggressive bool             `yaml:"aggressive"`
		Attributes map[string]int32 `yaml:"attributes"`
	} `yaml:"mob_templates"`
}

type spawnZoneFile struct {
	SpawnZones []struct {
		ZoneID         int32    `yaml:"zone_id"`
		Name           string   `yaml:"name"`
		Center         position `yaml:"center"`
		Size           position `yaml:"size"`
		MobTemplateID  int32    `yaml:"mob_template_id"`
		SpawnCount     int32    `yaml:"spawn_count"`
		RespawnTimeSec int32    `yaml:"respawn_time_sec"`
	} `yaml:"spawn_zones"`
}

type npcFile struct {
	Npcs []struct {
		ID       int64    `yaml:"id"`
		Name     string   `yaml:"name"`
		Title    string   `yaml:"title"`
		Type     string   `yaml:"type"`
		Level    int32    `yaml:"level"`
		Position position `yaml:"position"`
	} `yaml:"npcs"`
}

type itemFile struct {
	Items []struct {
		ID     int64  `yaml:"id"`
		Name   string `yaml:"name"`
		Type   string `yaml:"type"`
		Grade  string `yaml:"grade"`
		Weight int32  `yaml:"weight"`
		Price  int64  `yaml:"price"`
	} `yaml:"items"`
}

type lootFile struct {
	Loot []struct {
		MobTemplateID int32   `yaml:"mob_template_id"`
		ItemID        int64   `yaml:"item_id"`
		Chance        float32 `yaml:"chance"`
		MinCount      int32   `yaml:"min_count"`
		MaxCount      int32   `yaml:"max_count"`
	} `yaml:"loot"`
}

func generate(dataDir, out string) error {
	var templates mobTemplateFile
	if err := readYAML(filepath.Join(dataDir, "mob_templates.yaml"), &templates); err != nil {
		return err
	}
	var zones spawnZoneFile
	if err := readYAML(filepath.Join(dataDir, "spawn_zones.yaml"), &zones); err != nil {
		return err
	}
	var npcs npcFile
	if err := readYAML(filepath.Join(dataDir, "npcs.yaml"), &npcs); err != nil {
		return err
	}
	var items itemFile
	if err := readYAML(filepath.Join(dataDir, "items.yaml"), &items); err != nil {
		return err
	}
	var loot lootFile
	if err := readYAML(filepath.Join(dataDir, "loot.yaml"), &loot); err != nil {
		return err
	}

	var buf bytes.Buffer
	buf.WriteString("-- Generated by cmd/seedgen from data/*.yaml. Do not edit by hand.\n")
	buf.WriteString("-- +goose Up\n")

	writeItems(&buf, items)
	writeNpcs(&buf, npcs)
	writeTemplates(&buf, templates)
	writeLoot(&buf, loot)
	writeZones(&buf, zones)
	writeUsers(&buf)

	buf.WriteString("\n-- +goose Down\n")
	buf.WriteString("DELETE FROM characters;\n")
	buf.WriteString("DELETE FROM users;\n")
	buf.WriteString("DELETE FROM spawn_zones;\n")
	buf.WriteString("DELETE FROM loot;\n")
	buf.WriteString("DELETE FROM mob_templates;\n")
	buf.WriteString("DELETE FROM npcs;\n")
	buf.WriteString("DELETE FROM items;\n")

	if err := os.WriteFile(out, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", out, err)
	}
	fmt.Printf("wrote %s (%d bytes)\n", out, buf.Len())
	return nil
}

func readYAML(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}

func writeItems(buf *bytes.Buffer, f itemFile) {
	buf.WriteString("\nINSERT INTO items (id, name, type, grade, weight, price) VALUES\n")
	for i, it := range f.Items {
		fmt.Fprintf(buf, "    (%d, %s, %s, %s, %d, %d)%s\n",
			it.ID, quote(it.Name), quote(it.Type), quote(it.Grade), it.Weight, it.Price,
			sep(i, len(f.Items)))
	}
}

func writeNpcs(buf *bytes.Buffer, f npcFile) {
	buf.WriteString("\nINSERT INTO npcs (id, name, title, type, level, x, y, z, rot_z) VALUES\n")
	for i, n := range f.Npcs {
		fmt.Fprintf(buf, "    (%d, %s, %s, %s, %d, %g, %g, %g, %g)%s\n",
			n.ID, quote(n.Name), quote(n.Title), quote(n.Type), n.Level,
			n.Position.X, n.Position.Y, n.Position.Z, n.Position.RotZ,
			sep(i, len(f.Npcs)))
	}
}

func writeTemplates(buf *bytes.Buffer, f mobTemplateFile) {
	buf.WriteString("\nINSERT INTO mob_templates (id, name, level, race, hp, mp, aggressive, attributes) VALUES\n")
	for i, t := range f.MobTemplates {
		fmt.Fprintf(buf, "    (%d, %s, %d, %s, %d, %d, %t, %s::jsonb)%s\n",
			t.ID, quote(t.Name), t.Level, quote(t.Race), t.HP, t.MP, t.Aggressive,
			quote(attrsJSON(t.Attributes)), sep(i, len(f.MobTemplates)))
	}
}

func writeLoot(buf *bytes.Buffer, f lootFile) {
	buf.WriteString("\nINSERT INTO loot (mob_template_id, item_id, chance, min_count, max_count) VALUES\n")
	for i, l := range f.Loot {
		fmt.Fprintf(buf, "    (%d, %d, %g, %d, %d)%s\n",
			l.MobTemplateID, l.ItemID, l.Chance, l.MinCount, l.MaxCount,
			sep(i, len(f.Loot)))
	}
}

func writeZones(buf *bytes.Buffer, f spawnZoneFile) {
	buf.WriteString("\nINSERT INTO spawn_zones (zone_id, name, center_x, center_y, center_z, size_x, size_y, size_z, mob_template_id, spawn_count, respawn_time_sec) VALUES\n")
	for i, z := range f.SpawnZones {
		fmt.Fprintf(buf, "    (%d, %s, %g, %g, %g, %g, %g, %g, %d, %d, %d)%s\n",
			z.ZoneID, quote(z.Name),
			z.Center.X, z.Center.Y, z.Center.Z,
			z.Size.X, z.Size.Y, z.Size.Z,
			z.MobTemplateID, z.SpawnCount, z.RespawnTimeSec,
			sep(i, len(f.SpawnZones)))
	}
}

// writeUsers emits two development accounts with fixed session keys so a
// local client can join without an auth service.
func writeUsers(buf *bytes.Buffer) {
	buf.WriteString("\nINSERT INTO users (id, login, session_key) VALUES\n")
	buf.WriteString("    (42, 'dev', 'abc'),\n")
	buf.WriteString("    (43, 'dev2', 'def');\n")
	buf.WriteString("SELECT setval('users_id_seq', 100);\n")
	buf.WriteString("\nINSERT INTO characters (id, owner_id, name, class, race, level, exp, current_hp, current_mp, max_hp, max_mp) VALUES\n")
	buf.WriteString("    (7, 42, 'Alasse', 'mage', 'elf', 12, 48200, 240, 310, 260, 330),\n")
	buf.WriteString("    (8, 43, 'Borin', 'warrior', 'dwarf', 9, 21100, 410, 90, 430, 95);\n")
	buf.WriteString("SELECT setval('characters_id_seq', 100);\n")
	buf.WriteString("\nINSERT INTO character_positions (character_id, x, y, z, rot_z) VALUES\n")
	buf.WriteString("    (7, 150, -220, 200, 45),\n")
	buf.WriteString("    (8, -80, 330, 200, 180);\n")
}

// attrsJSON renders an attribute map as deterministic JSON (sorted keys) so
// regenerating the seed does not churn the migration.
func attrsJSON(attrs map[string]int32) string {
	if len(attrs) == 0 {
		return "{}"
	}
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, _ := json.Marshal(k)
		buf.Write(key)
		fmt.Fprintf(&buf, ":%d", attrs[k])
	}
	buf.WriteByte('}')
	return buf.String()
}

func quote(s string) string {
	var buf bytes.Buffer
	buf.WriteByte('\'')
	for _, r := range s {
		if r == '\'' {
			buf.WriteByte('\'')
		}
		buf.WriteRune(r)
	}
	buf.WriteByte('\'')
	return buf.String()
}

func sep(i, n int) string {
	if i == n-1 {
		return ";"
	}
	return ","
}
