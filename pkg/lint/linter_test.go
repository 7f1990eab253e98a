package lint

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lintSrc(t *testing.T, cfg Config, file, src string) *Result {
	t.Helper()
	l := New(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	defer l.Close()
	res, err := l.LintSource([]byte(src), file)
	require.NoError(t, err)
	return res
}

func lintJSX(t *testing.T, src string) *Result {
	return lintSrc(t, DefaultConfig(), "test.jsx", src)
}

func props(res *Result) []string {
	var out []string
	for _, d := range res.Diagnostics {
		out = append(out, d.Prop)
	}
	return out
}

func TestClassComponentDeclaredProps(t *testing.T) {
	res := lintJSX(t, `
class Hello extends React.Component {
  render() {
    return <div>{this.props.name}</div>;
  }
}
Hello.propTypes = { name: PropTypes.string };
`)
	assert.Empty(t, res.Diagnostics)
	require.Len(t, res.Components, 1)
	assert.Equal(t, "class", res.Components[0].Kind)
	assert.Equal(t, "Hello", res.Components[0].Name)
	assert.Equal(t, []string{"name"}, res.Components[0].DeclaredProps)
	assert.False(t, res.Components[0].Pure)
}

func TestPureComponentDetected(t *testing.T) {
	res := lintJSX(t, `
class Badge extends React.PureComponent {
  render() {
    return <span>{this.props.label}</span>;
  }
}
Badge.propTypes = { label: PropTypes.string };
`)
	assert.Empty(t, res.Diagnostics)
	require.Len(t, res.Components, 1)
	assert.Equal(t, "class", res.Components[0].Kind)
	assert.True(t, res.Components[0].Pure)
}

func TestClassComponentMissingProp(t *testing.T) {
	res := lintJSX(t, `
class Hello extends React.Component {
  render() {
    return <div>{this.props.name}{this.props.age}</div>;
  }
}
Hello.propTypes = { name: PropTypes.string };
`)
	require.Len(t, res.Diagnostics, 1)
	assert.Equal(t, "age", res.Diagnostics[0].Prop)
	assert.Equal(t, "'age' is missing in props validation", res.Diagnostics[0].Message)
	assert.NotZero(t, res.Diagnostics[0].Line)
}

func TestDocTagAnnotatedClass(t *testing.T) {
	res := lintJSX(t, `
/** @augments {React.Component} */
class Hello extends BaseView {
  render() {
    return <div>{this.props.name}</div>;
  }
}
Hello.propTypes = {};
`)
	require.Len(t, res.Diagnostics, 1)
	assert.Equal(t, "name", res.Diagnostics[0].Prop)
	require.Len(t, res.Components, 1)
	assert.Equal(t, "class", res.Components[0].Kind)
}

func TestNonComponentClassIgnored(t *testing.T) {
	res := lintJSX(t, `
class Helper extends Base {
  run() {
    return this.props.anything;
  }
}
`)
	assert.Empty(t, res.Diagnostics)
	assert.Empty(t, res.Components)
}

func TestStatelessFunctionWithPropTypes(t *testing.T) {
	res := lintJSX(t, `
function Hello(props) {
  return <div>{props.firstname} {props.lastname}</div>;
}
Hello.propTypes = { firstname: PropTypes.string };
`)
	require.Len(t, res.Diagnostics, 1)
	assert.Equal(t, "lastname", res.Diagnostics[0].Prop)
}

func TestStatelessDestructuringWithRest(t *testing.T) {
	res := lintJSX(t, `
function Hello({ name, ...rest }) {
  return <div>{name} {rest.lastname}</div>;
}
Hello.propTypes = {
  name: PropTypes.string,
  lastname: PropTypes.string,
};
`)
	assert.Empty(t, res.Diagnostics)
}

func TestStatelessDestructuringRestMissing(t *testing.T) {
	res := lintJSX(t, `
function Hello({ name, ...rest }) {
  return <div>{name} {rest.lastname}</div>;
}
Hello.propTypes = { name: PropTypes.string };
`)
	require.Len(t, res.Diagnostics, 1)
	assert.Equal(t, "lastname", res.Diagnostics[0].Prop)
}

func TestArrowComponentConciseBody(t *testing.T) {
	res := lintJSX(t, `
const Hello = (props) => <div>{props.name}</div>;
Hello.propTypes = { name: PropTypes.string };
`)
	assert.Empty(t, res.Diagnostics)
	require.Len(t, res.Components, 1)
	assert.Equal(t, "function", res.Components[0].Kind)
	assert.Equal(t, "Hello", res.Components[0].Name)
}

func TestNestedShapeValidation(t *testing.T) {
	res := lintJSX(t, `
class Card extends React.Component {
  render() {
    return <div>{this.props.user.name}{this.props.user.age}</div>;
  }
}
Card.propTypes = {
  user: PropTypes.shape({
    name: PropTypes.string.isRequired,
  }),
};
`)
	require.Len(t, res.Diagnostics, 1)
	assert.Equal(t, "user.age", res.Diagnostics[0].Prop)
}

func TestArrayOfShape(t *testing.T) {
	res := lintJSX(t, `
class List extends React.Component {
  render() {
    return <div>{this.props.items[0].label}{this.props.items[0].bogus}</div>;
  }
}
List.propTypes = {
  items: PropTypes.arrayOf(PropTypes.shape({ label: PropTypes.string })),
};
`)
	require.Len(t, res.Diagnostics, 1)
	assert.Equal(t, "items[].bogus", res.Diagnostics[0].Prop)
}

func TestOneOfTypeLeafUnionIsPermissive(t *testing.T) {
	res := lintJSX(t, `
class Hello extends React.Component {
  render() {
    return <div>{this.props.data.anything.at.all}</div>;
  }
}
Hello.propTypes = {
  data: PropTypes.oneOfType([PropTypes.string, PropTypes.number]),
};
`)
	assert.Empty(t, res.Diagnostics)
}

func TestLegacyCreateClass(t *testing.T) {
	res := lintJSX(t, `
var Hello = createReactClass({
  propTypes: { name: PropTypes.string },
  render: function() {
    return <div>{this.props.name}{this.props.missing}</div>;
  }
});
`)
	require.Len(t, res.Diagnostics, 1)
	assert.Equal(t, "missing", res.Diagnostics[0].Prop)
	require.Len(t, res.Components, 1)
	assert.Equal(t, "legacy", res.Components[0].Kind)
}

func TestFactoryHandlersUndeclared(t *testing.T) {
	res := lintJSX(t, `
const Card = createKind({
  propTypes: { title: PropTypes.string },
  render(props) {
    return <div>{props.title}</div>;
  },
  handlers: {
    onClick(event, props) {
      return props.value;
    },
  },
});
`)
	require.Len(t, res.Diagnostics, 1)
	assert.Equal(t, "value", res.Diagnostics[0].Prop)
	require.Len(t, res.Components, 1)
	assert.Equal(t, "factory", res.Components[0].Kind)
}

func TestFactoryHandlersMayReadComputed(t *testing.T) {
	res := lintJSX(t, `
const Card = createKind({
  propTypes: {},
  computed: {
    label(props) {
      return props.base;
    },
  },
  handlers: {
    onClick(event, props) {
      return props.label;
    },
  },
});
`)
	// handlers reading the computed-derived label is fine; the computed
	// function reading an undeclared base is not
	require.Len(t, res.Diagnostics, 1)
	assert.Equal(t, "base", res.Diagnostics[0].Prop)
}

func TestFactoryComputedMayNotReadHandlers(t *testing.T) {
	res := lintJSX(t, `
const Card = createKind({
  propTypes: {},
  computed: {
    label(props) {
      return props.onClick;
    },
  },
  handlers: {
    onClick(event, props) {},
  },
});
`)
	require.Len(t, res.Diagnostics, 1)
	assert.Equal(t, "onClick", res.Diagnostics[0].Prop)
}

func TestFactoryComputedStylerExempt(t *testing.T) {
	res := lintJSX(t, `
const Card = createKind({
  propTypes: {},
  computed: {
    label({ styler, base }) {
      return styler(base);
    },
  },
});
`)
	require.Len(t, res.Diagnostics, 1)
	assert.Equal(t, "base", res.Diagnostics[0].Prop)
}

func TestUnresolvableExternalDeclarationSilences(t *testing.T) {
	res := lintJSX(t, `
class Hello extends React.Component {
  render() {
    return <div>{this.props.anything}</div>;
  }
}
Hello.propTypes = importedPropTypes;
`)
	assert.Empty(t, res.Diagnostics)
}

func TestSpreadInDeclarationSilences(t *testing.T) {
	res := lintJSX(t, `
class Hello extends React.Component {
  render() {
    return <div>{this.props.anything}</div>;
  }
}
Hello.propTypes = { ...base, name: PropTypes.string };
`)
	assert.Empty(t, res.Diagnostics)
}

func TestSkipUndeclared(t *testing.T) {
	src := `
function Hello(props) {
  return <div>{props.name}</div>;
}
`
	res := lintSrc(t, DefaultConfig(), "test.jsx", src)
	require.Len(t, res.Diagnostics, 1)

	cfg := DefaultConfig()
	cfg.SkipUndeclared = true
	res = lintSrc(t, cfg, "test.jsx", src)
	assert.Empty(t, res.Diagnostics)
}

func TestIgnoreList(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Ignore = []string{"children"}
	res := lintSrc(t, cfg, "test.jsx", `
function Hello(props) {
  return <div>{props.children}{props.other}</div>;
}
Hello.propTypes = {};
`)
	require.Len(t, res.Diagnostics, 1)
	assert.Equal(t, "other", res.Diagnostics[0].Prop)
}

func TestInlineCallbackNeverComponent(t *testing.T) {
	res := lintJSX(t, `
registerThing(function(props) {
  return <span>{props.hidden}</span>;
});
`)
	assert.Empty(t, res.Diagnostics)
	assert.Empty(t, res.Components)
}

func TestObjectBuiltinsExcluded(t *testing.T) {
	res := lintJSX(t, `
function Hello(props) {
  return <div>{props.hasOwnProperty('x')}</div>;
}
Hello.propTypes = {};
`)
	assert.Empty(t, res.Diagnostics)
}

func TestCustomValidatorTrusted(t *testing.T) {
	cfg := DefaultConfig()
	cfg.CustomValidators = []string{"MyValidators"}
	res := lintSrc(t, cfg, "test.jsx", `
class Hello extends React.Component {
  render() {
    return <div>{this.props.thing.deeply.nested}</div>;
  }
}
Hello.propTypes = { thing: MyValidators.thing() };
`)
	assert.Empty(t, res.Diagnostics)
}

func TestPragmaOverride(t *testing.T) {
	res := lintJSX(t, `
/** @jsx Preact.h */
class Hello extends Preact.Component {
  render() {
    return <div>{this.props.missing}</div>;
  }
}
Hello.propTypes = {};
`)
	require.Len(t, res.Diagnostics, 1)
	assert.Equal(t, "missing", res.Diagnostics[0].Prop)
}

func TestTypeScriptAnnotatedProps(t *testing.T) {
	res := lintSrc(t, DefaultConfig(), "test.tsx", `
type Props = { name: string };
const Hello = (props: Props) => <div>{props.name}{props.age}</div>;
`)
	require.Len(t, res.Diagnostics, 1)
	assert.Equal(t, "age", res.Diagnostics[0].Prop)
}

func TestTypeScriptInterfaceProps(t *testing.T) {
	res := lintSrc(t, DefaultConfig(), "test.tsx", `
interface Props {
  label: string;
}
const Tag = (props: Props) => <span>{props.label}</span>;
`)
	assert.Empty(t, res.Diagnostics)
}

func TestTypeScriptClassHeritageTypeArgument(t *testing.T) {
	res := lintSrc(t, DefaultConfig(), "test.tsx", `
type Props = { title: string };
class Page extends React.Component<Props> {
  render() {
    return <h1>{this.props.title}{this.props.other}</h1>;
  }
}
`)
	require.Len(t, res.Diagnostics, 1)
	assert.Equal(t, "other", res.Diagnostics[0].Prop)
}

func TestDestructuredFromThisProps(t *testing.T) {
	res := lintJSX(t, `
class Hello extends React.Component {
  render() {
    const { first, second } = this.props;
    return <div>{first}{second}</div>;
  }
}
Hello.propTypes = { first: PropTypes.string };
`)
	require.Len(t, res.Diagnostics, 1)
	assert.Equal(t, "second", res.Diagnostics[0].Prop)
}

func TestDiagnosticsSorted(t *testing.T) {
	res := lintJSX(t, `
function Hello(props) {
  return <div>{props.b}{props.a}{props.c}</div>;
}
Hello.propTypes = {};
`)
	require.Len(t, res.Diagnostics, 3)
	assert.Equal(t, []string{"b", "a", "c"}, props(res), "source order, same line sorted by column")
}

func TestParseErrorStillReports(t *testing.T) {
	res := lintJSX(t, `
function Hello(props) {
  return <div>{props.name}</div>;
}
Hello.propTypes = {};
function broken( {
`)
	assert.True(t, res.ParseErrors)
}
