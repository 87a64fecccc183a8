package mcpserver

// ConfigFormatContract describes the chart configuration document that
// LLM consumers should follow when writing or editing a profile.
const ConfigFormatContract = `# Chart Configuration Format

Each profile points at one configuration document (JSON, YAML or TOML).
The document decides which exports are read, how rows are filtered and
ordered, and how the timeline is drawn.

## Required keys

- ` + "`directories.csv`" + `: directory scanned for ` + "`.csv`" + ` and ` + "`.xlsx`" + ` exports.
- ` + "`fields.start_date`" + `: column holding the bar start.
- ` + "`fields.end_date`" + `: column holding the bar end.

A blank string counts as missing. A document missing any of them is rejected
and nothing is rendered for the profile.

## Optional keys and defaults

| Key | Default |
|-----|---------|
| ` + "`directories.target`" + ` | ` + "`diagrams`" + ` |
| ` + "`fields.label`" + ` | ` + "`Summary`" + ` |
| ` + "`fields.category`" + ` | ` + "`Issue Type`" + ` |
| ` + "`fields.structure`" + ` | ` + "`Description`" + ` |
| ` + "`date_format.input`" + ` | ` + "`%d/%b/%y %I:%M %p`" + ` |
| ` + "`date_format.display`" + ` | ` + "`%Y-%m-%d`" + ` |
| ` + "`sort_by`" + ` | ` + "`start_date`" + ` (or ` + "`structure_pos`" + `) |
| ` + "`visualization.bar_height`" + ` | ` + "`0.9`" + ` |
| ` + "`visualization.chart_line_style`" + ` | ` + "`--`" + ` |
| ` + "`visualization.palette.from`" + ` / ` + "`to`" + ` | ` + "`#d0d0d0`" + ` / ` + "`#303030`" + ` |

Date formats use strftime directives (` + "`%d %b %y %Y %m %H %I %M %S %p`" + `).

## Colors

- ` + "`visualization.colors`" + ` maps a label value to a bar color. The reserved keys
  ` + "`chart_lines`" + ` and ` + "`x_label`" + ` set the grid and tick label colors.
- ` + "`visualization.categories`" + ` maps a category value to
  ` + "`{color, font_color, font_size}`" + `.
- Precedence: label override, then category color, then a gradient slot.
- Colors are SVG color names (` + "`crimson`" + `, ` + "`lightgrey`" + `, ...), matplotlib
  shorthands (` + "`k`" + `, ` + "`tab:blue`" + `) or hex (` + "`#1f77b4`" + `).
- Text is taken literally: ` + "`$NAME`" + ` is not expanded in chart documents.

## Filters

` + "`filters`" + ` is a list of ` + "`{field, operator, condition}`" + ` or the string ` + "`None`" + `.
Operators: ` + "`eq ne lt le gt ge`" + ` (aliases ` + "`== != < <= > >=`" + `, ` + "`equals`" + `, ` + "`lower_than`" + `, ...).
A column is numeric only when every non-empty cell is a number. ` + "`eq`" + `/` + "`ne`" + ` with a
condition that is not a number compare the cell text instead. A filter that names
an unknown operator or column, or orders by a condition that does not match the
column type, is skipped with a warning; the remaining filters apply.

## Milestones

` + "`milestones`" + ` is a list of ` + "`{date, name, pos, color, line_style}`" + `. ` + "`date`" + ` is ISO
(` + "`2024-01-15`" + `) or uses the input format. A ` + "`name`" + ` of ` + "`None`" + ` draws the line
without a label. ` + "`pos`" + ` is the label height as a fraction of the chart.

## Example

` + "```" + `yaml
directories:
  csv: csv/0
  target: diagrams/0
fields:
  start_date: Created
  end_date: Due Date
sort_by: structure_pos
filters:
  - field: Status
    operator: ne
    condition: Done
visualization:
  colors:
    Release: "#1f77b4"
    chart_lines: grey
  categories:
    Bug:
      color: orange
      font_color: red
milestones:
  - date: 2024-03-01
    name: Code freeze
    pos: 0.8
` + "```" + `
`
