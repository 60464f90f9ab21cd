// Package taxonomy maps skill names to canonical spellings and categories.
package taxonomy

import (
	"sort"
	"strings"
)

// Categories.
const (
	Language      = "language"
	Framework     = "framework"
	Database      = "database"
	Cloud         = "cloud"
	DevOps        = "devops"
	Data          = "data"
	Tool          = "tool"
	Testing       = "testing"
	SoftSkill     = "soft-skill"
	Uncategorized = "uncategorized"
)

type entry struct {
	name     string
	category string
}

var skills = map[string]entry{}

// aliases maps alternate spellings to a key of skills.
var aliases = map[string]string{
	"golang":              "go",
	"js":                  "javascript",
	"ts":                  "typescript",
	"node":                "node.js",
	"nodejs":              "node.js",
	"react.js":            "react",
	"reactjs":             "react",
	"vue.js":              "vue",
	"vuejs":               "vue",
	"postgres":            "postgresql",
	"k8s":                 "kubernetes",
	"amazon web services": "aws",
	"gcp":                 "google cloud",
	"ms sql":              "sql server",
	"mssql":               "sql server",
	"c sharp":             "c#",
	"cpp":                 "c++",
	"ml":                  "machine learning",
	"sklearn":             "scikit-learn",
}

func add(category string, names ...string) {
	for _, n := range names {
		skills[strings.ToLower(n)] = entry{name: n, category: category}
	}
}

func init() {
	add(Language, "Go", "Python", "Java", "JavaScript", "TypeScript", "C", "C++", "C#", "Ruby", "PHP",
		"Swift", "Kotlin", "Rust", "Scala", "R", "MATLAB", "Perl", "Haskell", "Elixir", "Dart",
		"SQL", "Bash", "HTML", "CSS", "Objective-C", "Lua", "Clojure")
	add(Framework, "React", "Angular", "Vue", "Django", "Flask", "FastAPI", "Spring", "Spring Boot",
		"Express", "Node.js", "Rails", "Laravel", ".NET", "ASP.NET", "Next.js", "Svelte", "jQuery",
		"Bootstrap", "Tailwind", "Flutter", "React Native", "gRPC", "GraphQL")
	add(Database, "PostgreSQL", "MySQL", "MongoDB", "Redis", "SQLite", "Oracle", "SQL Server",
		"Cassandra", "DynamoDB", "Elasticsearch", "MariaDB", "Neo4j", "Firebase", "CockroachDB")
	add(Cloud, "AWS", "Azure", "Google Cloud", "Heroku", "DigitalOcean", "Lambda", "EC2", "S3",
		"CloudFormation", "Cloudflare")
	add(DevOps, "Docker", "Kubernetes", "Terraform", "Ansible", "Jenkins", "CI/CD", "GitHub Actions",
		"GitLab CI", "CircleCI", "Helm", "Prometheus", "Grafana", "Nginx", "Linux")
	add(Data, "Machine Learning", "Deep Learning", "TensorFlow", "PyTorch", "Keras", "scikit-learn",
		"Pandas", "NumPy", "Spark", "Hadoop", "Kafka", "Airflow", "NLP", "Computer Vision",
		"Data Analysis", "Tableau", "Power BI")
	add(Tool, "Git", "GitHub", "GitLab", "Jira", "Confluence", "VS Code", "Vim", "Postman", "Figma",
		"Webpack", "Excel", "Slack")
	add(Testing, "Jest", "Mocha", "Pytest", "JUnit", "Selenium", "Cypress", "Playwright",
		"Unit Testing", "TDD")
	add(SoftSkill, "Communication", "Leadership", "Teamwork", "Problem Solving", "Mentoring",
		"Project Management", "Agile", "Scrum", "Collaboration", "Time Management",
		"Critical Thinking", "Public Speaking", "Negotiation")
}

func lookup(name string) (entry, bool) {
	key := strings.ToLower(strings.TrimSpace(name))
	if a, ok := aliases[key]; ok {
		key = a
	}
	e, ok := skills[key]
	return e, ok
}

// Categorize returns the category of a skill, or Uncategorized.
func Categorize(name string) string {
	if e, ok := lookup(name); ok {
		return e.category
	}
	return Uncategorized
}

// Canonical returns the preferred spelling of a known skill and true, or the
// trimmed input and false.
func Canonical(name string) (string, bool) {
	if e, ok := lookup(name); ok {
		return e.name, true
	}
	return strings.TrimSpace(name), false
}

// Names returns the canonical names of every skill, longest first, for keyword scanning.
func Names() []string {
	out := make([]string, 0, len(skills))
	for _, e := range skills {
		out = append(out, e.name)
	}
	sort.Slice(out, func(i, j int) bool {
		if len(out[i]) != len(out[j]) {
			return len(out[i]) > len(out[j])
		}
		return out[i] < out[j]
	})
	return out
}
