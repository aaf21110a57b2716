package tmpl_test

import (
	"errors"
	"fmt"

	"github.com/lwmacct/261018-go-pkg-jinjafs/pkg/kconfig"
	"github.com/lwmacct/261018-go-pkg-jinjafs/pkg/tmpl"
)

// Example_flattenedKeys 演示配置键既可直接访问，也可通过全局映射访问。
func Example_flattenedKeys() {
	engine, _ := tmpl.NewEngine()
	values := kconfig.Values{
		"CONFIG_TARGET":  "x86_64",
		"INSTALL_PREFIX": "/usr/opensync",
	}

	out, _ := engine.Render("example", "{{ CONFIG_TARGET }} {{ CONFIG.INSTALL_PREFIX }}/bin", values)
	fmt.Println(out)

	// Output:
	// x86_64 /usr/opensync/bin
}

// Example_coalesce 演示 coalesce 多级回退。
func Example_coalesce() {
	engine, _ := tmpl.NewEngine()
	values := kconfig.Values{"CONFIG_PRIMARY": "", "CONFIG_BACKUP": "backup"}

	out, _ := engine.Render("example", `{{ coalesce(CONFIG_PRIMARY, CONFIG_BACKUP, "default") }}`, values)
	fmt.Println(out)

	// Output:
	// backup
}

// Example_syntaxError 演示语法错误包含文件名和行号。
func Example_syntaxError() {
	engine, _ := tmpl.NewEngine()

	_, err := engine.Render("etc/app.conf.jinja", "line1\n{% bogus %}", kconfig.Values{})
	var se *tmpl.SyntaxError
	if errors.As(err, &se) {
		fmt.Println(se.File, se.Line)
	}

	// Output:
	// etc/app.conf.jinja 2
}
